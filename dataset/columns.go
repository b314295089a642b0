package dataset

import "fmt"

// FromColumns builds a Dataset from dynamically typed columns, the shape
// deserializers hand over. Each required column must be present with its
// exact Go type; anything else is a SchemaError. Extra columns are ignored.
func FromColumns(columns map[string]any) (*Dataset, error) {
	rt, err := column[[]int32](columns, RetentionTime)
	if err != nil {
		return nil, err
	}
	mz, err := column[[][]float32](columns, MassToCharge)
	if err != nil {
		return nil, err
	}
	signal, err := column[[][]uint16](columns, Signal)
	if err != nil {
		return nil, err
	}
	return New(rt, mz, signal)
}

// Columns returns the dataset as a name → column map, the inverse of
// FromColumns.
func (d *Dataset) Columns() map[string]any {
	return map[string]any{
		RetentionTime: d.RetentionTime,
		MassToCharge:  d.MassToCharge,
		Signal:        d.Signal,
	}
}

func column[T any](columns map[string]any, name string) (T, error) {
	var zero T
	raw, ok := columns[name]
	if !ok {
		return zero, &SchemaError{Column: name, Want: fmt.Sprintf("%T", zero)}
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &SchemaError{Column: name, Want: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", raw)}
	}
	return v, nil
}
