package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTimeseriesFullRange(t *testing.T) {
	tbl := loadVaccinations(t, []string{"A", "B"}, 10)
	axis := NewDateAxis(tbl.Column(ColDate))

	view := FilterTimeseries(tbl, axis, []string{"A"}, MarkerRange{From: 0, To: 10})

	require.Equal(t, 10, view.Len())
	for _, loc := range columnStrings(view, ColLocation) {
		assert.Equal(t, "A", loc)
	}
	dates := columnStrings(view, ColDate)
	assert.Equal(t, "2021-01-01", dates[0])
	assert.Equal(t, "2021-01-10", dates[9])
}

func TestFilterTimeseriesSingleMarker(t *testing.T) {
	tbl := loadVaccinations(t, []string{"A", "B"}, 10)
	axis := NewDateAxis(tbl.Column(ColDate))
	want, ok := axis.At(5)
	require.True(t, ok)

	view := FilterTimeseries(tbl, axis, []string{"A", "B"}, MarkerRange{From: 5, To: 5})

	require.Equal(t, 2, view.Len())
	for _, d := range columnStrings(view, ColDate) {
		assert.Equal(t, want.Format(DateLayout), d)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, columnStrings(view, ColLocation))
}

func TestFilterTimeseriesContainment(t *testing.T) {
	tbl := loadVaccinations(t, []string{"A", "B", "C"}, 37)
	axis := NewDateAxis(tbl.Column(ColDate))
	locs := []string{"C", "A"}

	for a := MinMarker; a <= MaxMarker; a++ {
		for b := a; b <= MaxMarker; b++ {
			view := FilterTimeseries(tbl, axis, locs, MarkerRange{From: a, To: b})
			lo, _ := axis.Day(a)
			hi, _ := axis.Day(b)

			dates := view.Column(ColDate)
			loc := view.Column(ColLocation)
			for i := 0; i < view.Len(); i++ {
				assert.GreaterOrEqual(t, dates.Dates[i], lo)
				assert.LessOrEqual(t, dates.Dates[i], hi)
				assert.Contains(t, locs, loc.Str(i))
			}
			// every matching source row is present: two locations per axis day in range
			assert.Equal(t, 2*(axis.Index(b)-axis.Index(a)+1), view.Len(), "markers %d..%d", a, b)
		}
	}
}

func TestFilterTimeseriesEmptyCases(t *testing.T) {
	tbl := loadVaccinations(t, []string{"A", "B"}, 10)
	axis := NewDateAxis(tbl.Column(ColDate))

	tests := []struct {
		name      string
		locations []string
		markers   MarkerRange
	}{
		{"no locations", nil, MarkerRange{0, 10}},
		{"empty locations", []string{}, MarkerRange{0, 10}},
		{"inverted range", []string{"A"}, MarkerRange{6, 5}},
		{"marker below range", []string{"A"}, MarkerRange{-1, 5}},
		{"marker above range", []string{"A"}, MarkerRange{0, 11}},
		{"unknown location", []string{"Atlantis"}, MarkerRange{0, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := FilterTimeseries(tbl, axis, tt.locations, tt.markers)
			assert.Equal(t, 0, view.Len())
			assert.Equal(t, tbl.Columns(), view.Columns())
		})
	}
}

func TestFilterTimeseriesIdempotentAndPure(t *testing.T) {
	tbl := loadVaccinations(t, []string{"A", "B"}, 10)
	axis := NewDateAxis(tbl.Column(ColDate))
	before := ToRecords(tbl)
	sel := MarkerRange{From: 2, To: 7}

	once := FilterTimeseries(tbl, axis, []string{"B"}, sel)
	twice := FilterTimeseries(once, axis, []string{"B"}, sel)
	again := FilterTimeseries(tbl, axis, []string{"B"}, sel)

	assert.Equal(t, ToRecords(once), ToRecords(twice))
	assert.Equal(t, ToRecords(once), ToRecords(again))
	assert.Equal(t, before, ToRecords(tbl), "source table must not change")
}

func TestFilterDemographicsProjection(t *testing.T) {
	tbl := loadCensus(t)

	view, err := FilterDemographics(tbl, []int{1}, ColAge)
	require.NoError(t, err)

	assert.Equal(t, []string{ColAge}, view.Columns())
	require.Equal(t, 2, view.Len())
	assert.Equal(t, []string{"52", "31"}, columnStrings(view, ColAge))
}

func TestFilterDemographicsLabels(t *testing.T) {
	tbl := loadCensus(t)

	both, err := FilterDemographics(tbl, []int{0, 1}, ColWorkclass)
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), both.Len())

	none, err := FilterDemographics(tbl, nil, ColWorkclass)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, []string{ColWorkclass}, none.Columns())

	odd, err := FilterDemographics(tbl, []int{7}, ColWorkclass)
	require.NoError(t, err)
	assert.Equal(t, 0, odd.Len())
}

func TestFilterDemographicsUnknownColumn(t *testing.T) {
	tbl := loadCensus(t)

	_, err := FilterDemographics(tbl, []int{1}, "fnlwgt")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestFilterDemographicRowsKeepsColumns(t *testing.T) {
	tbl := loadCensus(t)

	view := FilterDemographicRows(tbl, []int{0})
	assert.Equal(t, tbl.Columns(), view.Columns())
	assert.Equal(t, 5, view.Len())
	for _, v := range view.Column(ColLabel).Numbers {
		assert.Zero(t, v)
	}
}
