package engine

import (
	"sort"
	"time"
)

// Markers run from MinMarker to MaxMarker along the date axis.
const (
	MinMarker = 0
	MaxMarker = 10
)

// MarkerRange is an inclusive pair of selection markers.
type MarkerRange struct {
	From int
	To   int
}

// Valid reports whether both markers are in range and not inverted.
func (r MarkerRange) Valid() bool {
	return r.From >= MinMarker && r.To <= MaxMarker && r.From <= r.To
}

// DateAxis is the sorted, de-duplicated list of dates (days since epoch)
// present in the time-series table.
type DateAxis []int32

// NewDateAxis builds the axis from a date column.
func NewDateAxis(c *Column) DateAxis {
	seen := make(map[int32]struct{}, 1024)
	axis := make(DateAxis, 0, 1024)
	for _, d := range c.Dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		axis = append(axis, d)
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i] < axis[j] })
	return axis
}

// Index converts a marker into an axis position: floor(marker*(n-1)/10).
// Returns -1 for an empty axis or a marker outside the range.
func (a DateAxis) Index(marker int) int {
	if len(a) == 0 || marker < MinMarker || marker > MaxMarker {
		return -1
	}
	return marker * (len(a) - 1) / MaxMarker
}

// Day returns the axis date for marker, or false when it cannot be resolved.
func (a DateAxis) Day(marker int) (int32, bool) {
	i := a.Index(marker)
	if i < 0 {
		return 0, false
	}
	return a[i], true
}

// At returns the axis date for marker as a time.
func (a DateAxis) At(marker int) (time.Time, bool) {
	d, ok := a.Day(marker)
	if !ok {
		return time.Time{}, false
	}
	return DayToTime(d), true
}

// Ticks returns the dates for every marker from MinMarker to MaxMarker.
func (a DateAxis) Ticks() []time.Time {
	if len(a) == 0 {
		return nil
	}
	ticks := make([]time.Time, 0, MaxMarker-MinMarker+1)
	for m := MinMarker; m <= MaxMarker; m++ {
		t, _ := a.At(m)
		ticks = append(ticks, t)
	}
	return ticks
}

// SelectedRange is the concrete date span a marker pair resolves to.
type SelectedRange struct {
	Min string `json:"Minimum_selected_date"`
	Max string `json:"Maximum_selected_date"`
}

// Range resolves a marker pair to dates. Unresolvable markers give empty strings.
func (a DateAxis) Range(r MarkerRange) SelectedRange {
	var out SelectedRange
	if t, ok := a.At(r.From); ok {
		out.Min = t.Format(DateLayout)
	}
	if t, ok := a.At(r.To); ok {
		out.Max = t.Format(DateLayout)
	}
	return out
}

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"
