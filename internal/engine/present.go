package engine

import (
	"sort"
	"strconv"
)

// Record is one row keyed by column name.
type Record map[string]any

// ToRecords lists the rows of t in order. Dates are rendered as YYYY-MM-DD.
func ToRecords(t *Table) []Record {
	out := make([]Record, 0, t.Len())
	if t.Len() == 0 {
		return out
	}
	for i := 0; i < t.Len(); i++ {
		r := make(Record, len(t.cols))
		for _, c := range t.cols {
			if c.Kind == KindDate {
				r[c.Name] = c.Day(i).Format(DateLayout)
				continue
			}
			r[c.Name] = c.Value(i)
		}
		out = append(out, r)
	}
	return out
}

// Axis types understood by the chart layer.
const (
	AxisTime     = "time"
	AxisValue    = "value"
	AxisCategory = "category"
)

// Group is the slice of points sharing one category.
type Group struct {
	Name string    `json:"name"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// Series is a chart-ready (x, y, category) triple plus the same points
// grouped per category in first-appearance order.
type Series struct {
	XName    string    `json:"x_name"`
	YName    string    `json:"y_name"`
	XAxis    string    `json:"x_axis"`
	X        []string  `json:"x"`
	Y        []float64 `json:"y"`
	Category []string  `json:"category"`
	Groups   []Group   `json:"groups"`
}

// ToSeries extracts x, y and category columns from t. Missing columns or an
// empty table give an empty series.
func ToSeries(t *Table, x, y, category string) Series {
	s := Series{
		XName:    x,
		YName:    y,
		X:        []string{},
		Y:        []float64{},
		Category: []string{},
		Groups:   []Group{},
	}
	xc, yc, cc := t.Column(x), t.Column(y), t.Column(category)
	if xc == nil || yc == nil || cc == nil || yc.Kind != KindNumber {
		return s
	}
	s.XAxis = axisFor(xc)

	groups := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		xv := formatCell(xc, i)
		yv := yc.Numbers[i]
		cv := formatCell(cc, i)

		s.X = append(s.X, xv)
		s.Y = append(s.Y, yv)
		s.Category = append(s.Category, cv)

		g, ok := groups[cv]
		if !ok {
			g = len(s.Groups)
			groups[cv] = g
			s.Groups = append(s.Groups, Group{Name: cv})
		}
		s.Groups[g].X = append(s.Groups[g].X, xv)
		s.Groups[g].Y = append(s.Groups[g].Y, yv)
	}
	return s
}

// ToDistribution counts rows per distinct value of column, ordered by value.
// The result is a single-group series named after the column.
func ToDistribution(t *Table, column string) Series {
	s := Series{
		XName:    column,
		YName:    "count",
		X:        []string{},
		Y:        []float64{},
		Category: []string{},
		Groups:   []Group{},
	}
	c := t.Column(column)
	if c == nil {
		return s
	}
	s.XAxis = axisFor(c)
	if t.Len() == 0 {
		return s
	}

	type bucket struct {
		key   string
		num   float64
		count float64
	}
	byKey := make(map[string]*bucket)
	for i := 0; i < t.Len(); i++ {
		k := formatCell(c, i)
		b, ok := byKey[k]
		if !ok {
			b = &bucket{key: k}
			if c.Kind == KindNumber {
				b.num = c.Numbers[i]
			}
			byKey[k] = b
		}
		b.count++
	}
	buckets := make([]*bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if c.Kind == KindNumber {
			return buckets[i].num < buckets[j].num
		}
		return buckets[i].key < buckets[j].key
	})

	g := Group{Name: column}
	for _, b := range buckets {
		s.X = append(s.X, b.key)
		s.Y = append(s.Y, b.count)
		s.Category = append(s.Category, column)
		g.X = append(g.X, b.key)
		g.Y = append(g.Y, b.count)
	}
	s.Groups = append(s.Groups, g)
	return s
}

func axisFor(c *Column) string {
	switch {
	case c.Kind == KindDate:
		return AxisTime
	case c.Kind == KindNumber && !c.Categorical:
		return AxisValue
	default:
		return AxisCategory
	}
}

func formatCell(c *Column, i int) string {
	switch c.Kind {
	case KindString:
		return c.Str(i)
	case KindDate:
		return c.Day(i).Format(DateLayout)
	default:
		if c.Integral {
			return strconv.FormatInt(int64(c.Numbers[i]), 10)
		}
		return strconv.FormatFloat(c.Numbers[i], 'f', -1, 64)
	}
}
