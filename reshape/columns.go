package reshape

import (
	"encoding/json"
	"fmt"

	"github.com/bpowers/msview/dataset"
)

// Column names. Consumers address view columns strictly by these names;
// renaming or re-typing any of them breaks every consumer.
const (
	ColRetentionTime = dataset.RetentionTime // int32
	ColMassToCharge  = dataset.MassToCharge  // float32, list<float32> or bucket float32
	ColSignal        = dataset.Signal        // uint16 or list<uint16>
	ColIndex         = "index"               // uint64

	ColMassToChargeCount = ColMassToCharge + ".Count" // uint32
	ColMassToChargeMin   = ColMassToCharge + ".Min"   // nullable float32
	ColMassToChargeMax   = ColMassToCharge + ".Max"   // nullable float32
	ColSignalCount       = ColSignal + ".Count"       // uint32
	ColSignalMin         = ColSignal + ".Min"         // nullable uint16 per scan, uint16 per bucket
	ColSignalMax         = ColSignal + ".Max"         // nullable uint16 per scan, uint16 per bucket
	ColSignalSum         = ColSignal + ".Sum"         // uint64
	ColRetentionTimeMin  = ColRetentionTime + ".Min"  // int32
	ColRetentionTimeMax  = ColRetentionTime + ".Max"  // int32

	ColExtractedIonChromatogram      = "extracted_ion_chromatogram"            // list<Point>
	ColExtractedIonChromatogramCount = ColExtractedIonChromatogram + ".Count" // uint32

	ColMassSpectrum      = "mass_spectrum"            // list<Peak>
	ColMassSpectrumCount = ColMassSpectrum + ".Count" // uint32
	ColSignalNormalized  = ColSignal + ".Normalized"  // float64
)

// Nullable is a column whose entries may be null. Values[i] is meaningful
// only when Valid[i] is true.
type Nullable[T any] struct {
	Values []T
	Valid  []bool
}

func newNullable[T any](capacity int) Nullable[T] {
	return Nullable[T]{
		Values: make([]T, 0, capacity),
		Valid:  make([]bool, 0, capacity),
	}
}

// Len returns the number of entries, null or not.
func (n Nullable[T]) Len() int {
	return len(n.Values)
}

// Get returns entry i and whether it is non-null.
func (n Nullable[T]) Get(i int) (T, bool) {
	if !n.Valid[i] {
		var zero T
		return zero, false
	}
	return n.Values[i], true
}

// MarshalJSON encodes the column as an array with null entries.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	out := make([]*T, len(n.Values))
	for i := range n.Values {
		if n.Valid[i] {
			out[i] = &n.Values[i]
		}
	}
	return json.Marshal(out)
}

func (n *Nullable[T]) append(v T, ok bool) {
	if !ok {
		var zero T
		v = zero
	}
	n.Values = append(n.Values, v)
	n.Valid = append(n.Valid, ok)
}

// Point is one (retention time, signal) sample of an extracted ion
// chromatogram.
type Point struct {
	RetentionTime int32  `json:"retention_time"`
	Signal        uint16 `json:"signal"`
}

// Peak is one (mass-to-charge, signal) pair of a mass spectrum.
type Peak struct {
	MassToCharge float32 `json:"mass_to_charge"`
	Signal       uint16  `json:"signal"`
}

type namedColumn struct {
	name string
	data any
}

func lookupColumn(cols []namedColumn, name string) (any, error) {
	for _, c := range cols {
		if c.name == name {
			return c.data, nil
		}
	}
	return nil, &dataset.SchemaError{Column: name, Want: "a view column"}
}

func columnNames(cols []namedColumn) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// ColumnAs returns column name of v as T. A missing column or a column of a
// different type is reported as a *dataset.SchemaError.
func ColumnAs[T any](v View, name string) (T, error) {
	var zero T
	raw, err := v.Column(name)
	if err != nil {
		return zero, err
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, &dataset.SchemaError{
			Column: name,
			Want:   fmt.Sprintf("%T", zero),
			Got:    fmt.Sprintf("%T", raw),
		}
	}
	return typed, nil
}
