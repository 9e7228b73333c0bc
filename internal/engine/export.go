package engine

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// ArrowSchema maps the table's columns to an Arrow schema: strings as utf8,
// integral numbers as int64, other numbers as float64, dates as date32.
func ArrowSchema(t *Table) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(t.cols))
	for _, c := range t.cols {
		fields = append(fields, arrow.Field{Name: c.Name, Type: arrowType(c)})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(c *Column) arrow.DataType {
	switch c.Kind {
	case KindString:
		return arrow.BinaryTypes.String
	case KindDate:
		return arrow.FixedWidthTypes.Date32
	default:
		if c.Integral {
			return arrow.PrimitiveTypes.Int64
		}
		return arrow.PrimitiveTypes.Float64
	}
}

// WriteArrow streams t to w in the Arrow IPC stream format as a single record batch.
func WriteArrow(w io.Writer, t *Table) error {
	mem := memory.NewGoAllocator()
	schema := ArrowSchema(t)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, c := range t.cols {
		switch fb := b.Field(i).(type) {
		case *array.StringBuilder:
			for r := 0; r < t.Len(); r++ {
				fb.Append(c.Str(r))
			}
		case *array.Date32Builder:
			for _, d := range c.Dates {
				fb.Append(arrow.Date32(d))
			}
		case *array.Int64Builder:
			for _, v := range c.Numbers {
				fb.Append(int64(v))
			}
		case *array.Float64Builder:
			fb.AppendValues(c.Numbers, nil)
		default:
			return fmt.Errorf("arrow export: unsupported column %q", c.Name)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("arrow export: %w", err)
	}
	return wr.Close()
}
