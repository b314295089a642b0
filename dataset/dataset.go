// Package dataset defines the immutable columnar snapshot of one
// mass-spectrometry acquisition, the registry of loaded datasets, and the
// store that acquisitions are saved to and opened from.
package dataset

import (
	"fmt"
	"math"
)

// Column names as they appear in derived views and in FromColumns input.
const (
	RetentionTime = "retention_time"
	MassToCharge  = "mass_to_charge"
	Signal        = "signal"
)

// Dataset is one acquisition: for every scan a retention time and a spectrum
// of (mass-to-charge, signal) pairs. A Dataset is never modified after New
// returns it; it may be shared by reference between goroutines.
type Dataset struct {
	RetentionTime []int32
	MassToCharge  [][]float32
	Signal        [][]uint16
}

// Scan is a read-only view of one row.
type Scan struct {
	RetentionTime int32
	MassToCharge  []float32
	Signal        []uint16
}

// New validates the columns and wraps them in a Dataset. The slices are
// retained, not copied; callers must not modify them afterwards.
func New(retentionTime []int32, massToCharge [][]float32, signal [][]uint16) (*Dataset, error) {
	ds := &Dataset{
		RetentionTime: retentionTime,
		MassToCharge:  massToCharge,
		Signal:        signal,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Empty returns a dataset with zero scans.
func Empty() *Dataset {
	return &Dataset{}
}

// Validate checks the structural invariants: equal column lengths, equal
// per-row list lengths and finite mass-to-charge values.
func (d *Dataset) Validate() error {
	n := len(d.RetentionTime)
	if len(d.MassToCharge) != n || len(d.Signal) != n {
		return &DataInvariantError{
			Row: -1,
			Reason: fmt.Sprintf("column lengths differ: %s=%d %s=%d %s=%d",
				RetentionTime, n, MassToCharge, len(d.MassToCharge), Signal, len(d.Signal)),
		}
	}
	for i := 0; i < n; i++ {
		if len(d.MassToCharge[i]) != len(d.Signal[i]) {
			return &DataInvariantError{
				Row:    i,
				Reason: fmt.Sprintf("%d mass_to_charge values but %d signal values", len(d.MassToCharge[i]), len(d.Signal[i])),
			}
		}
		for j, mz := range d.MassToCharge[i] {
			if math.IsNaN(float64(mz)) || math.IsInf(float64(mz), 0) {
				return &DataInvariantError{
					Row:    i,
					Reason: fmt.Sprintf("mass_to_charge[%d] is not finite", j),
				}
			}
		}
	}
	return nil
}

// Len returns the number of scans.
func (d *Dataset) Len() int {
	return len(d.RetentionTime)
}

// Peaks returns the total number of (mass-to-charge, signal) pairs.
func (d *Dataset) Peaks() int {
	total := 0
	for _, mz := range d.MassToCharge {
		total += len(mz)
	}
	return total
}

// Scan returns row i.
func (d *Dataset) Scan(i int) Scan {
	return Scan{
		RetentionTime: d.RetentionTime[i],
		MassToCharge:  d.MassToCharge[i],
		Signal:        d.Signal[i],
	}
}
