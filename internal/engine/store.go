package engine

import (
	"time"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Column holds one column in Struct-of-Arrays format.
// Exactly one of IDs, Numbers or Dates is populated, depending on Kind.
type Column struct {
	Name        string
	Kind        Kind
	Categorical bool
	Integral    bool

	// Dictionary Encoded IDs (0..N) into Dict
	IDs  []int32
	Dict []string

	Numbers []float64

	// Days since the Unix epoch
	Dates []int32
}

func (c *Column) len() int {
	switch c.Kind {
	case KindString:
		return len(c.IDs)
	case KindNumber:
		return len(c.Numbers)
	default:
		return len(c.Dates)
	}
}

// Str returns the string value of row i.
func (c *Column) Str(i int) string {
	return c.Dict[c.IDs[i]]
}

// Day returns the date value of row i as a UTC midnight.
func (c *Column) Day(i int) time.Time {
	return DayToTime(c.Dates[i])
}

// Value returns row i as a plain Go value: string, float64, int or time.Time.
func (c *Column) Value(i int) any {
	switch c.Kind {
	case KindString:
		return c.Str(i)
	case KindNumber:
		if c.Integral {
			return int(c.Numbers[i])
		}
		return c.Numbers[i]
	default:
		return c.Day(i)
	}
}

// take copies the rows listed in idx into a new column. Dictionaries are
// shared since they are never written after load.
func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Categorical: c.Categorical, Integral: c.Integral}
	switch c.Kind {
	case KindString:
		out.Dict = c.Dict
		out.IDs = make([]int32, len(idx))
		for k, i := range idx {
			out.IDs[k] = c.IDs[i]
		}
	case KindNumber:
		out.Numbers = make([]float64, len(idx))
		for k, i := range idx {
			out.Numbers[k] = c.Numbers[i]
		}
	case KindDate:
		out.Dates = make([]int32, len(idx))
		for k, i := range idx {
			out.Dates[k] = c.Dates[i]
		}
	}
	return out
}

// Table is an immutable, ordered collection of rows over named columns.
// Every derivation returns a new Table.
type Table struct {
	Name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// NewTable assembles a table from equally sized columns.
func NewTable(name string, cols ...*Column) *Table {
	t := &Table{Name: name, cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	if len(cols) > 0 {
		t.rows = cols[0].len()
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

// Take returns a new table holding the rows listed in idx, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(idx)
	}
	out := NewTable(t.Name, cols...)
	out.rows = len(idx)
	return out
}

// Project returns a table restricted to the named columns. Unknown names
// yield ErrUnknownColumn.
func (t *Table) Project(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c := t.Column(n)
		if c == nil {
			return nil, unknownColumn(t.Name, n)
		}
		cols = append(cols, c)
	}
	out := NewTable(t.Name, cols...)
	out.rows = t.rows
	return out, nil
}

// DayToTime converts days since the Unix epoch to a UTC time.
func DayToTime(d int32) time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// TimeToDay truncates t to whole days since the Unix epoch.
func TimeToDay(t time.Time) int32 {
	y, m, d := t.Date()
	return int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
