package chart

import (
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"

	"explorer/internal/engine"
)

const (
	chartWidth  = "100%"
	chartHeight = "520px"
)

func boolPtr(b bool) *bool { return &b }

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

// Snippet renders just the chart DIV and script, for embedding in a page.
func Snippet(c snippetRenderer) template.HTML {
	s := c.RenderSnippet()
	return template.HTML(s.Element + "\n" + s.Script)
}

// Scatter builds a scatter chart with one series per category.
func Scatter(title string, s engine.Series) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(true), Top: "30px", Type: "scroll"}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XName, Type: axisType(s.XAxis)}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.YName, Type: "value"}),
	)
	if s.XAxis == engine.AxisCategory {
		sc.SetXAxis(distinct(s.X))
	}
	for _, g := range s.Groups {
		points := make([]opts.ScatterData, 0, len(g.X))
		for i := range g.X {
			points = append(points, opts.ScatterData{Value: []interface{}{g.X[i], g.Y[i]}})
		}
		sc.AddSeries(g.Name, points)
	}
	return sc
}

// Distribution builds a bar chart of value counts.
func Distribution(title string, s engine.Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XName}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.YName}),
	)
	bar.SetXAxis(s.X)
	for _, g := range s.Groups {
		data := make([]opts.BarData, 0, len(g.Y))
		for _, y := range g.Y {
			data = append(data, opts.BarData{Value: y})
		}
		bar.AddSeries(g.Name, data)
	}
	return bar
}

func axisType(a string) string {
	if a == "" {
		return engine.AxisValue
	}
	return a
}

func distinct(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
