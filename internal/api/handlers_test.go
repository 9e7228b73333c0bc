package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorer/internal/engine"
	"explorer/internal/models"
)

const testCensus = `39, State-gov, 77516, Bachelors, 13, Never-married, Adm-clerical, Not-in-family, White, Male, 2174, 0, 40, United-States, <=50K
50, Self-emp-not-inc, 83311, Bachelors, 13, Married-civ-spouse, Exec-managerial, Husband, White, Male, 0, 0, 13, United-States, <=50K
52, Self-emp-inc, 287927, HS-grad, 9, Married-civ-spouse, Exec-managerial, Wife, White, Female, 15024, 0, 40, United-States, >50K
31, Private, 45781, Masters, 14, Never-married, Prof-specialty, Not-in-family, White, Female, 14084, 0, 50, United-States, >50K
`

func testDatasets(t *testing.T) *engine.Datasets {
	t.Helper()

	var b strings.Builder
	b.WriteString("location,date,total_vaccinations,people_vaccinated,people_fully_vaccinated\n")
	for _, loc := range []string{"Chile", "Austria"} {
		for d := 1; d <= 21; d++ {
			fmt.Fprintf(&b, "%s,2021-03-%02d,%d,%d,%d\n", loc, d, d*100, d*80, d*50)
		}
	}
	ts, err := engine.LoadTimeseries(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)

	buckets, err := engine.DefaultBuckets()
	require.NoError(t, err)
	demo, err := engine.LoadDemographics(context.Background(), strings.NewReader(testCensus), buckets)
	require.NoError(t, err)

	return engine.NewDatasets(ts, demo)
}

func newTestServer(t *testing.T, ds *engine.Datasets) (*echo.Echo, *Handler) {
	t.Helper()
	logger := zerolog.Nop()
	h := NewHandler(ds, 5, &logger)
	return NewServer(h, ServerOptions{}, &logger), h
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type pageBody struct {
	Data   []map[string]any `json:"data"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p pageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestLoadingState(t *testing.T) {
	e, h := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, get(e, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/readyz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/vaccinations").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/").Code)

	h.SetData(testDatasets(t))
	assert.Equal(t, http.StatusOK, get(e, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(e, "/api/vaccinations").Code)
}

func TestGetOptions(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts models.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	require.Len(t, opts.Locations, 2)
	assert.Equal(t, "Austria", opts.Locations[0].Label)
	require.Len(t, opts.Ticks, 11)
	assert.Equal(t, "2021-03-01", opts.Ticks[0].Date)
	assert.Equal(t, "2021-03-21", opts.Ticks[10].Date)
	assert.Len(t, opts.Columns, 7)
}

func TestGetVaccinationsPagination(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	// markers 0..10 cover the whole 21-day axis
	p := decodePage(t, get(e, "/api/vaccinations?location=Chile&from=0&to=10"))
	assert.Equal(t, 21, p.Total)
	assert.Equal(t, 5, p.Limit, "default limit")
	require.Len(t, p.Data, 5)
	assert.Equal(t, "Chile", p.Data[0]["location"])
	assert.Equal(t, "2021-03-01", p.Data[0]["date"])

	p = decodePage(t, get(e, "/api/vaccinations?location=Chile&from=0&to=10&limit=10&offset=18"))
	assert.Len(t, p.Data, 3)
	assert.Equal(t, 18, p.Offset)

	p = decodePage(t, get(e, "/api/vaccinations?location=Chile&from=0&to=10&offset=100"))
	assert.Equal(t, 21, p.Total)
	assert.Empty(t, p.Data)
	assert.NotNil(t, p.Data)
}

func TestGetVaccinationsSelections(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	// default selection: first location, markers 0..1 -> days 0..2
	p := decodePage(t, get(e, "/api/vaccinations"))
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, "Austria", p.Data[0]["location"])

	// explicitly empty location set
	p = decodePage(t, get(e, "/api/vaccinations?location="))
	assert.Equal(t, 0, p.Total)

	// inverted markers
	p = decodePage(t, get(e, "/api/vaccinations?location=Chile&from=8&to=2"))
	assert.Equal(t, 0, p.Total)

	// out of range markers clamp to 0..10
	p = decodePage(t, get(e, "/api/vaccinations?location=Chile&location=Austria&from=-4&to=99&limit=100"))
	assert.Equal(t, 42, p.Total)
}

func TestGetSelectedRange(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/api/vaccinations/range?from=5&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Minimum_selected_date":"2021-03-11","Maximum_selected_date":"2021-03-21"}`, rec.Body.String())
}

func TestGetVaccinationSeriesAndSummary(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/api/vaccinations/series?location=Chile&location=Austria&from=0&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	var s engine.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Len(t, s.X, 42)
	assert.Len(t, s.Groups, 2)

	rec = get(e, "/api/vaccinations/summary?location=Chile&location=Austria&from=0&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum []models.LocationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Len(t, sum, 2)
	assert.Equal(t, 2100.0, sum[0].PeakVaccinations)
}

func TestExportVaccinations(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/api/vaccinations/export.arrow?location=Chile&from=0&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, arrowStreamMIME, rec.Header().Get(echo.HeaderContentType))
	assert.NotZero(t, rec.Body.Len())
}

func TestGetIncome(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	p := decodePage(t, get(e, "/api/income?label=1&column=education"))
	assert.Equal(t, 2, p.Total)
	require.Len(t, p.Data, 2)
	assert.Len(t, p.Data[0], 1, "projected to the chosen column")
	assert.Equal(t, "HS-grad", p.Data[0]["education"])

	p = decodePage(t, get(e, "/api/income?label=0&label=1"))
	assert.Equal(t, 4, p.Total)

	p = decodePage(t, get(e, "/api/income?label="))
	assert.Equal(t, 0, p.Total)

	p = decodePage(t, get(e, "/api/income/rows?label=0"))
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, "Public", p.Data[0]["workclass"])

	rec := get(e, "/api/income?column=fnlwgt")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetIncomeDistributionAndLabels(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/api/income/distribution?label=0&label=1&column=workclass")
	require.Equal(t, http.StatusOK, rec.Code)
	var s engine.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, []string{"Private", "Public", "Self Employed"}, s.X)
	assert.Equal(t, []float64{1, 1, 2}, s.Y)

	rec = get(e, "/api/income/labels")
	require.Equal(t, http.StatusOK, rec.Code)
	var counts []models.LabelCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 2, counts[1].Count)
}

func TestGetFrame(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/api/frame?tab=table-primary&location=Chile&from=0&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	var f struct {
		Tab     string           `json:"tab"`
		Records []map[string]any `json:"records"`
		Series  *engine.Series   `json:"series"`
		Rows    int              `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "table-primary", f.Tab)
	assert.Len(t, f.Records, 21)
	assert.Nil(t, f.Series)

	f.Records, f.Series = nil, nil
	rec = get(e, "/api/frame?tab=chart-secondary&label=1&column=sex")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Empty(t, f.Records)
	require.NotNil(t, f.Series)
	assert.Equal(t, []string{"Female"}, f.Series.X)

	assert.Equal(t, http.StatusBadRequest, get(e, "/api/frame?tab=table-secondary&column=nope").Code)
}

func TestGetPage(t *testing.T) {
	e, _ := newTestServer(t, testDatasets(t))

	rec := get(e, "/?location=Chile&from=0&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, pageTitle)
	assert.Contains(t, body, "21 rows")
	assert.Contains(t, body, "Minimum_selected_date")
	assert.Contains(t, body, "<td>Chile</td>")

	rec = get(e, "/?tab=chart-primary&location=Chile&location=Austria&from=0&to=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts.init")

	rec = get(e, "/?tab=chart-secondary&label=0&label=1&column=race")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Distribution of race")
}

func TestGetPaginationParams(t *testing.T) {
	e := echo.New()
	cases := []struct {
		query         string
		limit, offset int
	}{
		{"", 50, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=-1&offset=-5", 50, 0},
		{"limit=abc", 50, 0},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		limit, offset := getPaginationParams(c, 50)
		assert.Equal(t, tc.limit, limit, tc.query)
		assert.Equal(t, tc.offset, offset, tc.query)
	}
}
