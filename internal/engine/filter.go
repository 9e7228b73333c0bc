package engine

import (
	"explorer/internal/observability"
)

// FilterTimeseries keeps the rows whose location is in locations and whose
// date lies between the axis dates of the two markers, inclusive. An
// inverted or out-of-range marker pair, or no locations, yields an empty table.
func FilterTimeseries(t *Table, axis DateAxis, locations []string, markers MarkerRange) *Table {
	observability.FilterEvaluations.WithLabelValues(timeseriesName).Inc()

	if len(locations) == 0 || !markers.Valid() {
		return t.Take(nil)
	}
	lo, okLo := axis.Day(markers.From)
	hi, okHi := axis.Day(markers.To)
	if !okLo || !okHi {
		return t.Take(nil)
	}

	loc := t.Column(ColLocation)
	dates := t.Column(ColDate)

	// Resolve names to dictionary IDs once; unknown names simply never match.
	wanted := make([]bool, len(loc.Dict))
	want := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		want[l] = struct{}{}
	}
	for id, name := range loc.Dict {
		if _, ok := want[name]; ok {
			wanted[id] = true
		}
	}

	idx := make([]int, 0, 64)
	for i, id := range loc.IDs {
		if !wanted[id] {
			continue
		}
		if d := dates.Dates[i]; d >= lo && d <= hi {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// FilterDemographicRows keeps every column of the rows whose income label is in labels.
func FilterDemographicRows(t *Table, labels []int) *Table {
	observability.FilterEvaluations.WithLabelValues(demographicsName).Inc()

	if len(labels) == 0 {
		return t.Take(nil)
	}
	var want [2]bool
	for _, l := range labels {
		if l == 0 || l == 1 {
			want[l] = true
		}
	}
	col := t.Column(ColLabel)
	idx := make([]int, 0, 256)
	for i, v := range col.Numbers {
		if want[int(v)] {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// FilterDemographics keeps the rows whose income label is in labels and
// projects the result onto column.
func FilterDemographics(t *Table, labels []int, column string) (*Table, error) {
	if t.Column(column) == nil {
		return nil, unknownColumn(t.Name, column)
	}
	return FilterDemographicRows(t, labels).Project(column)
}
