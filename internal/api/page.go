package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"explorer/internal/chart"
	"explorer/internal/engine"
	"explorer/internal/models"
	"explorer/internal/reactive"
)

const (
	pageTitle = "Covid Vaccinations and Adult Income Explorer"

	// rows rendered into the HTML table; the JSON API paginates instead
	pageRowLimit = 1000
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type tabLink struct {
	Title  string
	Class  string
	Href   string
	Active bool
}

type pageView struct {
	Title             string
	Tab               reactive.Tab
	Tabs              []tabLink
	Options           models.Options
	Selection         reactive.Selection
	SelectedLocations map[string]bool
	SelectedLabels    map[string]bool
	RangeJSON         string
	Frame             *reactive.Frame
	Records           [][]string
	Truncated         bool
	Chart             template.HTML
}

// GetPage renders the dashboard for the selection in the query string.
func (h *Handler) GetPage(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	sel := parseSelection(c, ds)

	frame, err := reactive.NewController(ds, sel).Render()
	if err != nil {
		return badColumn(err)
	}

	view := pageView{
		Title:             pageTitle,
		Tab:               sel.Tab,
		Tabs:              tabLinks(c.QueryParams(), sel.Tab),
		Options:           ds.Options(),
		Selection:         sel,
		SelectedLocations: make(map[string]bool, len(sel.Locations)),
		SelectedLabels:    make(map[string]bool, len(sel.Labels)),
		Frame:             frame,
	}
	for _, l := range sel.Locations {
		view.SelectedLocations[l] = true
	}
	for _, l := range sel.Labels {
		if l == 0 || l == 1 {
			view.SelectedLabels[engine.LabelNames[l]] = true
		}
	}
	if b, err := json.Marshal(frame.Range); err == nil {
		view.RangeJSON = string(b)
	}

	if frame.Series != nil {
		if sel.Tab == reactive.TabChartPrimary {
			view.Chart = chart.Snippet(chart.Scatter("Total vaccinations by location", *frame.Series))
		} else {
			view.Chart = chart.Snippet(chart.Distribution(fmt.Sprintf("Distribution of %s", sel.Column), *frame.Series))
		}
	}
	view.Records, view.Truncated = tableCells(frame)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logger.Error().Err(err).Str("tab", string(sel.Tab)).Msg("page template failed")
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func tabLinks(q url.Values, active reactive.Tab) []tabLink {
	links := make([]tabLink, 0, len(reactive.Tabs))
	for _, t := range reactive.Tabs {
		v := url.Values{}
		for k, vs := range q {
			v[k] = vs
		}
		v.Set("tab", string(t))
		class := "secondary"
		if t.Primary() {
			class = "primary"
		}
		links = append(links, tabLink{
			Title:  t.Title(),
			Class:  class,
			Href:   "/?" + v.Encode(),
			Active: t == active,
		})
	}
	return links
}

func tableCells(f *reactive.Frame) ([][]string, bool) {
	n := len(f.Records)
	truncated := n > pageRowLimit
	if truncated {
		n = pageRowLimit
	}
	rows := make([][]string, 0, n)
	for _, r := range f.Records[:n] {
		row := make([]string, len(f.Columns))
		for i, col := range f.Columns {
			row[i] = cellString(r[col])
		}
		rows = append(rows, row)
	}
	return rows, truncated
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
