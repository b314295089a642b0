package reshape

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var (
	pointType = arrow.StructOf(
		arrow.Field{Name: ColRetentionTime, Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: ColSignal, Type: arrow.PrimitiveTypes.Uint16},
	)
	peakType = arrow.StructOf(
		arrow.Field{Name: ColMassToCharge, Type: arrow.PrimitiveTypes.Float32},
		arrow.Field{Name: ColSignal, Type: arrow.PrimitiveTypes.Uint16},
	)
)

// ToRecord copies v into an Arrow record with the same column names, in the
// same order. Nullable columns carry Arrow nulls, list columns become Arrow
// lists and chromatogram or spectrum entries become lists of structs.
// The caller owns the record and must Release it.
func ToRecord(v View, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	cols := v.columns()
	fields := make([]arrow.Field, 0, len(cols))
	arrays := make([]arrow.Array, 0, len(cols))
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	for _, c := range cols {
		arr, nullable, err := buildArray(mem, c.data)
		if err != nil {
			return nil, fmt.Errorf("export column %q: %w", c.name, err)
		}
		arrays = append(arrays, arr)
		fields = append(fields, arrow.Field{Name: c.name, Type: arr.DataType(), Nullable: nullable})
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, arrays, int64(v.Len())), nil
}

func buildArray(mem memory.Allocator, data any) (arrow.Array, bool, error) {
	switch d := data.(type) {
	case []int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray(), false, nil
	case []uint16:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray(), false, nil
	case []uint32:
		b := array.NewUint32Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray(), false, nil
	case []uint64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray(), false, nil
	case []float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray(), false, nil
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(d, nil)
		return b.NewArray(), false, nil
	case Nullable[float32]:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(d.Values, d.Valid)
		return b.NewArray(), true, nil
	case Nullable[uint16]:
		b := array.NewUint16Builder(mem)
		defer b.Release()
		b.AppendValues(d.Values, d.Valid)
		return b.NewArray(), true, nil
	case [][]float32:
		return buildList(mem, arrow.PrimitiveTypes.Float32, d, func(vb array.Builder, row []float32) {
			vb.(*array.Float32Builder).AppendValues(row, nil)
		}), false, nil
	case [][]uint16:
		return buildList(mem, arrow.PrimitiveTypes.Uint16, d, func(vb array.Builder, row []uint16) {
			vb.(*array.Uint16Builder).AppendValues(row, nil)
		}), false, nil
	case [][]Point:
		return buildList(mem, pointType, d, func(vb array.Builder, row []Point) {
			sb := vb.(*array.StructBuilder)
			rt := sb.FieldBuilder(0).(*array.Int32Builder)
			sig := sb.FieldBuilder(1).(*array.Uint16Builder)
			for _, p := range row {
				sb.Append(true)
				rt.Append(p.RetentionTime)
				sig.Append(p.Signal)
			}
		}), false, nil
	case [][]Peak:
		return buildList(mem, peakType, d, func(vb array.Builder, row []Peak) {
			sb := vb.(*array.StructBuilder)
			mz := sb.FieldBuilder(0).(*array.Float32Builder)
			sig := sb.FieldBuilder(1).(*array.Uint16Builder)
			for _, p := range row {
				sb.Append(true)
				mz.Append(p.MassToCharge)
				sig.Append(p.Signal)
			}
		}), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported column type %T", data)
	}
}

func buildList[T any](mem memory.Allocator, elem arrow.DataType, rows [][]T, appendRow func(array.Builder, []T)) arrow.Array {
	b := array.NewListBuilder(mem, elem)
	defer b.Release()
	vb := b.ValueBuilder()
	for _, row := range rows {
		b.Append(true)
		appendRow(vb, row)
	}
	return b.NewArray()
}
