package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"explorer/internal/engine"
	"explorer/internal/models"
	"explorer/internal/reactive"
)

const arrowStreamMIME = "application/vnd.apache.arrow.stream"

type Handler struct {
	data         atomic.Pointer[engine.Datasets]
	defaultLimit int
	logger       *zerolog.Logger
}

// NewHandler serves ds, which may be nil until the background load finishes.
func NewHandler(ds *engine.Datasets, defaultLimit int, logger *zerolog.Logger) *Handler {
	h := &Handler{defaultLimit: defaultLimit, logger: logger}
	if ds != nil {
		h.data.Store(ds)
	}
	return h
}

// SetData publishes a fully built dataset context.
func (h *Handler) SetData(ds *engine.Datasets) {
	h.data.Store(ds)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)
	e.GET("/healthz", h.GetHealth)
	e.GET("/readyz", h.GetReady)

	api := e.Group("/api")
	api.GET("/options", h.GetOptions)
	api.GET("/frame", h.GetFrame)
	api.GET("/vaccinations", h.GetVaccinations)
	api.GET("/vaccinations/series", h.GetVaccinationSeries)
	api.GET("/vaccinations/range", h.GetSelectedRange)
	api.GET("/vaccinations/summary", h.GetVaccinationSummary)
	api.GET("/vaccinations/export.arrow", h.ExportVaccinations)
	api.GET("/income", h.GetIncome)
	api.GET("/income/rows", h.GetIncomeRows)
	api.GET("/income/distribution", h.GetIncomeDistribution)
	api.GET("/income/labels", h.GetIncomeLabels)
}

// --- HELPERS ---

// datasets returns the published context or a 503 while loading.
func (h *Handler) datasets() (*engine.Datasets, error) {
	ds := h.data.Load()
	if ds == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "loading")
	}
	return ds, nil
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate(c echo.Context, records []engine.Record, defaultLimit int) error {
	total := len(records)
	limit, offset := getPaginationParams(c, defaultLimit)

	if offset >= total {
		return c.JSON(http.StatusOK, models.Page{Data: []engine.Record{}, Total: total, Limit: limit, Offset: offset})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, models.Page{Data: records[offset:end], Total: total, Limit: limit, Offset: offset})
}

func clampMarker(v int) int {
	if v < engine.MinMarker {
		return engine.MinMarker
	}
	if v > engine.MaxMarker {
		return engine.MaxMarker
	}
	return v
}

func intParam(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}

// parseSelection rebuilds the control state from the query string. Absent
// controls take their initial values.
func parseSelection(c echo.Context, ds *engine.Datasets) reactive.Selection {
	sel := reactive.DefaultSelection(ds)
	q := c.QueryParams()

	sel.Tab = reactive.ParseTab(q.Get("tab"))
	if locs, ok := q["location"]; ok {
		sel.Locations = nonEmpty(locs)
	}
	sel.Markers = engine.MarkerRange{
		From: clampMarker(intParam(c, "from", sel.Markers.From)),
		To:   clampMarker(intParam(c, "to", sel.Markers.To)),
	}
	if raw, ok := q["label"]; ok {
		sel.Labels = make([]int, 0, len(raw))
		for _, r := range raw {
			if v, err := strconv.Atoi(r); err == nil {
				sel.Labels = append(sel.Labels, v)
			}
		}
	}
	if col := q.Get("column"); col != "" {
		sel.Column = col
	}
	return sel
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func badColumn(err error) error {
	if errors.Is(err, engine.ErrUnknownColumn) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) GetReady(c echo.Context) error {
	if h.data.Load() == nil {
		return c.String(http.StatusServiceUnavailable, "loading")
	}
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) GetOptions(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds.Options())
}

// GetFrame runs one controller render for the full selection.
func (h *Handler) GetFrame(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	frame, err := reactive.NewController(ds, parseSelection(c, ds)).Render()
	if err != nil {
		return badColumn(err)
	}
	return c.JSON(http.StatusOK, frame)
}

func (h *Handler) filteredTimeseries(c echo.Context) (*engine.Table, error) {
	ds, err := h.datasets()
	if err != nil {
		return nil, err
	}
	sel := parseSelection(c, ds)
	return engine.FilterTimeseries(ds.Timeseries, ds.Axis, sel.Locations, sel.Markers), nil
}

func (h *Handler) GetVaccinations(c echo.Context) error {
	view, err := h.filteredTimeseries(c)
	if err != nil {
		return err
	}
	return paginate(c, engine.ToRecords(view), h.defaultLimit)
}

func (h *Handler) GetVaccinationSeries(c echo.Context) error {
	view, err := h.filteredTimeseries(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.ToSeries(view, engine.ColDate, engine.ColTotalVaccinations, engine.ColLocation))
}

func (h *Handler) GetSelectedRange(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds.Axis.Range(parseSelection(c, ds).Markers))
}

func (h *Handler) GetVaccinationSummary(c echo.Context) error {
	view, err := h.filteredTimeseries(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.Summarize(view))
}

func (h *Handler) ExportVaccinations(c echo.Context) error {
	view, err := h.filteredTimeseries(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := engine.WriteArrow(&buf, view); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, arrowStreamMIME, buf.Bytes())
}

func (h *Handler) GetIncome(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	sel := parseSelection(c, ds)
	view, err := engine.FilterDemographics(ds.Demographics, sel.Labels, sel.Column)
	if err != nil {
		return badColumn(err)
	}
	return paginate(c, engine.ToRecords(view), h.defaultLimit)
}

func (h *Handler) GetIncomeRows(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	view := engine.FilterDemographicRows(ds.Demographics, parseSelection(c, ds).Labels)
	return paginate(c, engine.ToRecords(view), h.defaultLimit)
}

func (h *Handler) GetIncomeDistribution(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	sel := parseSelection(c, ds)
	view, err := engine.FilterDemographics(ds.Demographics, sel.Labels, sel.Column)
	if err != nil {
		return badColumn(err)
	}
	return c.JSON(http.StatusOK, engine.ToDistribution(view, sel.Column))
}

func (h *Handler) GetIncomeLabels(c echo.Context) error {
	ds, err := h.datasets()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.LabelBreakdown(ds.Demographics))
}
