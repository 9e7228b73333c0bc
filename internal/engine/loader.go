package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"explorer/internal/observability"
)

// Time-series column names.
const (
	ColLocation              = "location"
	ColDate                  = "date"
	ColTotalVaccinations     = "total_vaccinations"
	ColPeopleVaccinated      = "people_vaccinated"
	ColPeopleFullyVaccinated = "people_fully_vaccinated"
)

// Demographic column names.
const (
	ColAge       = "age"
	ColWorkclass = "workclass"
	ColEducation = "education"
	ColRace      = "race"
	ColSex       = "sex"
	ColHoursWeek = "hours_week"
	ColLabel     = "label"
)

const (
	timeseriesName   = "vaccinations"
	demographicsName = "income"

	// census rows carry 15 fields, unnamed
	demographicFields = 15
	missingSentinel   = "?"
	highIncomeLabel   = ">50K"

	ctxCheckEvery = 4096
)

// timeseriesNumbers are the numeric columns kept from the vaccination file.
var timeseriesNumbers = []string{ColTotalVaccinations, ColPeopleVaccinated, ColPeopleFullyVaccinated}

// demographicLayout maps kept census columns to their field position.
var demographicLayout = []struct {
	name  string
	field int
	kind  Kind
}{
	{ColAge, 0, KindNumber},
	{ColWorkclass, 1, KindString},
	{ColEducation, 3, KindString},
	{ColRace, 8, KindString},
	{ColSex, 9, KindString},
	{ColHoursWeek, 12, KindNumber},
	{ColLabel, 14, KindNumber},
}

// --- 1. SMALL PARSERS ---

// fastInt parses "123" -> 123, rejecting anything that is not plain digits.
func fastInt(b string) (int32, bool) {
	if b == "" {
		return 0, false
	}
	var n int32
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int32(c-'0')
	}
	return n, true
}

// parseDay parses "2021-07-25" (or any layout dateparse understands) into days since epoch.
func parseDay(s string) (int32, bool) {
	if s == "" {
		return 0, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return 0, false
	}
	return TimeToDay(t), true
}

// dictBuilder dictionary-encodes a string column as it is read.
type dictBuilder struct {
	index map[string]int32
	dict  []string
	ids   []int32
}

func newDictBuilder() *dictBuilder {
	return &dictBuilder{index: make(map[string]int32)}
}

func (d *dictBuilder) add(s string) {
	id, ok := d.index[s]
	if !ok {
		id = int32(len(d.dict))
		d.dict = append(d.dict, s)
		d.index[s] = id
	}
	d.ids = append(d.ids, id)
}

func (d *dictBuilder) column(name string, categorical bool) *Column {
	return &Column{Name: name, Kind: KindString, Categorical: categorical, IDs: d.ids, Dict: d.dict}
}

// --- 2. LOADERS ---

// LoadTimeseries reads the vaccination CSV. Rows without a location, or with
// any kept value missing, are dropped.
func LoadTimeseries(ctx context.Context, r io.Reader) (*Table, error) {
	start := time.Now()
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", ErrSchemaMismatch, timeseriesName, err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	need := append([]string{ColLocation, ColDate}, timeseriesNumbers...)
	for _, n := range need {
		if _, ok := pos[n]; !ok {
			return nil, fmt.Errorf("%w: %s missing column %q", ErrSchemaMismatch, timeseriesName, n)
		}
	}
	width := 0
	for _, n := range need {
		if pos[n] >= width {
			width = pos[n] + 1
		}
	}

	locations := newDictBuilder()
	var dates []int32
	numbers := make([][]float64, len(timeseriesNumbers))
	values := make([]float64, len(timeseriesNumbers))
	dropped := 0

	for line := 0; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrSchemaMismatch, timeseriesName, line+2, err)
		}
		if len(rec) < width {
			return nil, fmt.Errorf("%w: %s row %d has %d fields", ErrSchemaMismatch, timeseriesName, line+2, len(rec))
		}

		loc := strings.TrimSpace(rec[pos[ColLocation]])
		if loc == "" {
			dropped++
			continue
		}
		day, ok := parseDay(strings.TrimSpace(rec[pos[ColDate]]))
		if !ok {
			dropped++
			continue
		}
		complete := true
		for i, n := range timeseriesNumbers {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[pos[n]]), 64)
			if err != nil {
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			dropped++
			continue
		}

		locations.add(loc)
		dates = append(dates, day)
		for i := range numbers {
			numbers[i] = append(numbers[i], values[i])
		}
	}

	cols := []*Column{
		locations.column(ColLocation, true),
		{Name: ColDate, Kind: KindDate, Dates: dates},
	}
	for i, n := range timeseriesNumbers {
		cols = append(cols, &Column{Name: n, Kind: KindNumber, Integral: true, Numbers: numbers[i]})
	}
	t := NewTable(timeseriesName, cols...)
	if err := finishLoad(t, dropped, start); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadDemographics reads the headerless census CSV, drops rows carrying the
// missing-value sentinel, buckets categories and binarises the income label.
func LoadDemographics(ctx context.Context, r io.Reader, buckets BucketMap) (*Table, error) {
	start := time.Now()
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	strs := make(map[string]*dictBuilder)
	nums := make(map[string][]float64)
	for _, l := range demographicLayout {
		if l.kind == KindString {
			strs[l.name] = newDictBuilder()
		}
	}
	dropped := 0

	for line := 0; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrSchemaMismatch, demographicsName, line+1, err)
		}
		if len(rec) != demographicFields {
			return nil, fmt.Errorf("%w: %s row %d has %d fields, want %d",
				ErrSchemaMismatch, demographicsName, line+1, len(rec), demographicFields)
		}

		missing := false
		for _, l := range demographicLayout {
			if strings.TrimSpace(rec[l.field]) == missingSentinel {
				missing = true
				break
			}
		}
		if missing {
			dropped++
			continue
		}

		age, okAge := fastInt(strings.TrimSpace(rec[0]))
		hours, okHours := fastInt(strings.TrimSpace(rec[12]))
		if !okAge || !okHours {
			return nil, fmt.Errorf("%w: %s row %d has non-numeric age or hours", ErrSchemaMismatch, demographicsName, line+1)
		}
		label := 0.0
		if strings.TrimSpace(rec[14]) == highIncomeLabel {
			label = 1
		}
		nums[ColAge] = append(nums[ColAge], float64(age))
		nums[ColHoursWeek] = append(nums[ColHoursWeek], float64(hours))
		nums[ColLabel] = append(nums[ColLabel], label)
		for _, l := range demographicLayout {
			if l.kind == KindString {
				strs[l.name].add(strings.TrimSpace(rec[l.field]))
			}
		}
	}

	cols := make([]*Column, 0, len(demographicLayout))
	for _, l := range demographicLayout {
		if l.kind == KindString {
			c := strs[l.name].column(l.name, true)
			if err := buckets.bucketColumn(c); err != nil {
				return nil, err
			}
			cols = append(cols, c)
			continue
		}
		cols = append(cols, &Column{
			Name:        l.name,
			Kind:        KindNumber,
			Integral:    true,
			Categorical: l.name == ColLabel,
			Numbers:     nums[l.name],
		})
	}
	t := NewTable(demographicsName, cols...)
	if err := finishLoad(t, dropped, start); err != nil {
		return nil, err
	}
	return t, nil
}

func finishLoad(t *Table, dropped int, start time.Time) error {
	observability.RowsDropped.WithLabelValues(t.Name).Add(float64(dropped))
	observability.RowsLoaded.WithLabelValues(t.Name).Set(float64(t.Len()))
	observability.LoadDuration.WithLabelValues(t.Name).Observe(time.Since(start).Seconds())
	if t.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDataset, t.Name)
	}
	return nil
}
