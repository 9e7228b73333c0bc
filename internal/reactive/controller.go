package reactive

import (
	"time"

	"explorer/internal/engine"
	"explorer/internal/observability"
)

// Node names.
const (
	nodeTab       = "tab"
	nodeLocations = "locations"
	nodeMarkers   = "markers"
	nodeLabels    = "labels"
	nodeColumn    = "column"

	nodeTimeseriesView   = "timeseries.view"
	nodeTimeseriesRange  = "timeseries.range"
	nodeTimeseriesTable  = "timeseries.table"
	nodeTimeseriesChart  = "timeseries.chart"
	nodeDemographicsView = "demographics.view"
	nodeDemographicTable = "demographics.table"
	nodeDemographicChart = "demographics.chart"
)

// Selection is the full state of the controls for one render.
type Selection struct {
	Tab       Tab
	Locations []string
	Markers   engine.MarkerRange
	Labels    []int
	Column    string
}

// DefaultSelection mirrors the controls' initial values: the first location,
// markers 0..1, the low income label and the age column.
func DefaultSelection(ds *engine.Datasets) Selection {
	sel := Selection{
		Tab:     TabTablePrimary,
		Markers: engine.MarkerRange{From: 0, To: 1},
		Labels:  []int{0},
		Column:  engine.ColAge,
	}
	if len(ds.Locations) > 0 {
		sel.Locations = []string{ds.Locations[0]}
	}
	return sel
}

// Frame is the outcome of one render cycle. At most one of Records and
// Series is set, matching the active tab.
type Frame struct {
	Tab     Tab                  `json:"tab"`
	Columns []string             `json:"columns,omitempty"`
	Records []engine.Record      `json:"records,omitempty"`
	Series  *engine.Series       `json:"series,omitempty"`
	Rows    int                  `json:"rows"`
	Range   engine.SelectedRange `json:"range"`
}

type viewResult struct {
	table *engine.Table
	err   error
}

type tableOutput struct {
	columns []string
	records []engine.Record
	rows    int
}

type chartOutput struct {
	series engine.Series
	rows   int
}

// Controller owns the dependency graph for one selection over a dataset context.
type Controller struct {
	ds *engine.Datasets
	g  *Graph
}

// NewController builds the graph and seeds the inputs from sel.
func NewController(ds *engine.Datasets, sel Selection) *Controller {
	c := &Controller{ds: ds, g: NewGraph()}

	c.g.Input(nodeTab, sel.Tab)
	c.g.Input(nodeLocations, sel.Locations)
	c.g.Input(nodeMarkers, sel.Markers)
	c.g.Input(nodeLabels, sel.Labels)
	c.g.Input(nodeColumn, sel.Column)

	c.g.Derive(nodeTimeseriesView, []string{nodeLocations, nodeMarkers}, func(a []any) any {
		return engine.FilterTimeseries(ds.Timeseries, ds.Axis, a[0].([]string), a[1].(engine.MarkerRange))
	})
	c.g.Derive(nodeTimeseriesRange, []string{nodeMarkers}, func(a []any) any {
		return ds.Axis.Range(a[0].(engine.MarkerRange))
	})
	c.g.Derive(nodeDemographicsView, []string{nodeLabels, nodeColumn}, func(a []any) any {
		t, err := engine.FilterDemographics(ds.Demographics, a[0].([]int), a[1].(string))
		return viewResult{table: t, err: err}
	})

	c.g.Derive(nodeTimeseriesTable, []string{nodeTab, nodeTimeseriesView}, func(a []any) any {
		if a[0].(Tab) != TabTablePrimary {
			return nil
		}
		t := a[1].(*engine.Table)
		return &tableOutput{columns: t.Columns(), records: engine.ToRecords(t), rows: t.Len()}
	})
	c.g.Derive(nodeTimeseriesChart, []string{nodeTab, nodeTimeseriesView}, func(a []any) any {
		if a[0].(Tab) != TabChartPrimary {
			return nil
		}
		t := a[1].(*engine.Table)
		return &chartOutput{
			series: engine.ToSeries(t, engine.ColDate, engine.ColTotalVaccinations, engine.ColLocation),
			rows:   t.Len(),
		}
	})
	c.g.Derive(nodeDemographicTable, []string{nodeTab, nodeDemographicsView}, func(a []any) any {
		if a[0].(Tab) != TabTableSecondary {
			return nil
		}
		v := a[1].(viewResult)
		if v.err != nil {
			return v.err
		}
		return &tableOutput{columns: v.table.Columns(), records: engine.ToRecords(v.table), rows: v.table.Len()}
	})
	c.g.Derive(nodeDemographicChart, []string{nodeTab, nodeDemographicsView, nodeColumn}, func(a []any) any {
		if a[0].(Tab) != TabChartSecondary {
			return nil
		}
		v := a[1].(viewResult)
		if v.err != nil {
			return v.err
		}
		return &chartOutput{series: engine.ToDistribution(v.table, a[2].(string)), rows: v.table.Len()}
	})
	return c
}

// Update applies a new selection; only nodes downstream of changed inputs
// are recomputed on the next Render.
func (c *Controller) Update(sel Selection) {
	// inputs are declared in NewController, Set cannot fail
	_ = c.g.Set(nodeTab, sel.Tab)
	_ = c.g.Set(nodeLocations, sel.Locations)
	_ = c.g.Set(nodeMarkers, sel.Markers)
	_ = c.g.Set(nodeLabels, sel.Labels)
	_ = c.g.Set(nodeColumn, sel.Column)
}

// Render materialises the active tab's output. Inactive outputs stay nil.
func (c *Controller) Render() (*Frame, error) {
	tabV, _ := c.g.Get(nodeTab)
	tab := tabV.(Tab)
	start := time.Now()
	defer func() {
		observability.RenderDuration.WithLabelValues(string(tab)).Observe(time.Since(start).Seconds())
	}()

	rng, _ := c.g.Get(nodeTimeseriesRange)
	f := &Frame{Tab: tab, Range: rng.(engine.SelectedRange)}

	out, _ := c.g.Get(outputNode(tab))
	switch o := out.(type) {
	case error:
		return nil, o
	case *tableOutput:
		f.Columns = o.columns
		f.Records = o.records
		f.Rows = o.rows
	case *chartOutput:
		s := o.series
		f.Series = &s
		f.Rows = o.rows
	}
	return f, nil
}

// Recomputations exposes per-node compute counts.
func (c *Controller) Recomputations(node string) int {
	return c.g.Recomputations(node)
}

func outputNode(t Tab) string {
	switch t {
	case TabChartPrimary:
		return nodeTimeseriesChart
	case TabTableSecondary:
		return nodeDemographicTable
	case TabChartSecondary:
		return nodeDemographicChart
	default:
		return nodeTimeseriesTable
	}
}
