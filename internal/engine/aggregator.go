package engine

import (
	"sort"

	"explorer/internal/models"
)

// Income label names, indexed by label value.
var LabelNames = [2]string{"Less than 50K", "More than 50K"}

type locStats struct {
	records  int
	first    int32
	last     int32
	peakTot  float64
	peakFull float64
}

// Summarize reduces a time-series view to one row per location, ordered by
// peak total vaccinations, highest first.
func Summarize(t *Table) []models.LocationSummary {
	out := make([]models.LocationSummary, 0)
	loc := t.Column(ColLocation)
	if t.Len() == 0 || loc == nil {
		return out
	}
	dates := t.Column(ColDate)
	tot := t.Column(ColTotalVaccinations)
	full := t.Column(ColPeopleFullyVaccinated)

	// Array indexed by dictionary ID instead of a map keyed by name.
	stats := make([]locStats, len(loc.Dict))
	for i, id := range loc.IDs {
		s := &stats[id]
		d := dates.Dates[i]
		if s.records == 0 || d < s.first {
			s.first = d
		}
		if s.records == 0 || d > s.last {
			s.last = d
		}
		s.records++
		if v := tot.Numbers[i]; v > s.peakTot {
			s.peakTot = v
		}
		if v := full.Numbers[i]; v > s.peakFull {
			s.peakFull = v
		}
	}

	for id, s := range stats {
		if s.records == 0 {
			continue
		}
		out = append(out, models.LocationSummary{
			Location:            loc.Dict[id],
			Records:             s.records,
			FirstDate:           DayToTime(s.first).Format(DateLayout),
			LastDate:            DayToTime(s.last).Format(DateLayout),
			PeakVaccinations:    s.peakTot,
			PeakFullyVaccinated: s.peakFull,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PeakVaccinations != out[j].PeakVaccinations {
			return out[i].PeakVaccinations > out[j].PeakVaccinations
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// LabelBreakdown counts rows per income label.
func LabelBreakdown(t *Table) []models.LabelCount {
	var counts [2]int
	if col := t.Column(ColLabel); col != nil {
		for _, v := range col.Numbers {
			counts[int(v)]++
		}
	}
	out := make([]models.LabelCount, len(counts))
	for l, n := range counts {
		out[l] = models.LabelCount{Label: l, Name: LabelNames[l], Count: n}
	}
	return out
}
