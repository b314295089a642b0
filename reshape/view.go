package reshape

import "fmt"

// Kind tags the variant of a derived view.
type Kind int

const (
	KindGroupedByScan Kind = iota
	KindGroupedByBucket
	KindFlattened
	KindSpectra
)

func (k Kind) String() string {
	switch k {
	case KindGroupedByScan:
		return "grouped_by_scan"
	case KindGroupedByBucket:
		return "grouped_by_bucket"
	case KindFlattened:
		return "flattened"
	case KindSpectra:
		return "spectra"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// View is a derived, read-only table. The concrete type is one of
// *GroupedByScan, *GroupedByBucket, *Flattened or *Spectra; each has a fixed
// column set, listed in order by Columns. Views handed out by a cache are
// shared between consumers and must not be modified.
type View interface {
	Kind() Kind
	Len() int
	Columns() []string
	Column(name string) (any, error)

	columns() []namedColumn
}

// GroupedByScan is one row per scan with per-spectrum aggregates, sorted by
// retention time.
type GroupedByScan struct {
	RetentionTime     []int32
	MassToCharge      [][]float32
	Signal            [][]uint16
	MassToChargeCount []uint32
	MassToChargeMin   Nullable[float32]
	MassToChargeMax   Nullable[float32]
	SignalCount       []uint32
	SignalMin         Nullable[uint16]
	SignalMax         Nullable[uint16]
	SignalSum         []uint64
}

func (v *GroupedByScan) Kind() Kind { return KindGroupedByScan }
func (v *GroupedByScan) Len() int   { return len(v.RetentionTime) }

func (v *GroupedByScan) columns() []namedColumn {
	return []namedColumn{
		{ColRetentionTime, v.RetentionTime},
		{ColMassToCharge, v.MassToCharge},
		{ColSignal, v.Signal},
		{ColMassToChargeCount, v.MassToChargeCount},
		{ColMassToChargeMin, v.MassToChargeMin},
		{ColMassToChargeMax, v.MassToChargeMax},
		{ColSignalCount, v.SignalCount},
		{ColSignalMin, v.SignalMin},
		{ColSignalMax, v.SignalMax},
		{ColSignalSum, v.SignalSum},
	}
}

func (v *GroupedByScan) Columns() []string { return columnNames(v.columns()) }

func (v *GroupedByScan) Column(name string) (any, error) { return lookupColumn(v.columns(), name) }

// GroupedByBucket is one row per integer mass-to-charge bucket holding the
// extracted ion chromatogram of that bucket, sorted by bucket.
type GroupedByBucket struct {
	MassToCharge                  []float32
	ExtractedIonChromatogram      [][]Point
	ExtractedIonChromatogramCount []uint32
	RetentionTimeMin              []int32
	RetentionTimeMax              []int32
	SignalMin                     []uint16
	SignalMax                     []uint16
	SignalSum                     []uint64
}

func (v *GroupedByBucket) Kind() Kind { return KindGroupedByBucket }
func (v *GroupedByBucket) Len() int   { return len(v.MassToCharge) }

func (v *GroupedByBucket) columns() []namedColumn {
	return []namedColumn{
		{ColMassToCharge, v.MassToCharge},
		{ColExtractedIonChromatogram, v.ExtractedIonChromatogram},
		{ColExtractedIonChromatogramCount, v.ExtractedIonChromatogramCount},
		{ColRetentionTimeMin, v.RetentionTimeMin},
		{ColRetentionTimeMax, v.RetentionTimeMax},
		{ColSignalMin, v.SignalMin},
		{ColSignalMax, v.SignalMax},
		{ColSignalSum, v.SignalSum},
	}
}

func (v *GroupedByBucket) Columns() []string { return columnNames(v.columns()) }

func (v *GroupedByBucket) Column(name string) (any, error) { return lookupColumn(v.columns(), name) }

// Flattened is the raw peak list: one row per (scan, peak) pair, sorted by
// the selected axis. Index numbers rows after sorting so UI row identity is
// stable across redraws of the same cached view.
type Flattened struct {
	Index         []uint64
	RetentionTime []int32
	MassToCharge  []float32
	Signal        []uint16
}

func (v *Flattened) Kind() Kind { return KindFlattened }
func (v *Flattened) Len() int   { return len(v.Index) }

func (v *Flattened) columns() []namedColumn {
	return []namedColumn{
		{ColIndex, v.Index},
		{ColRetentionTime, v.RetentionTime},
		{ColMassToCharge, v.MassToCharge},
		{ColSignal, v.Signal},
	}
}

func (v *Flattened) Columns() []string { return columnNames(v.columns()) }

func (v *Flattened) Column(name string) (any, error) { return lookupColumn(v.columns(), name) }

// Spectra is one row per scan holding its mass spectrum sorted by
// mass-to-charge, the total signal of the scan and that total normalized to
// the largest total in the view.
type Spectra struct {
	RetentionTime     []int32
	MassSpectrum      [][]Peak
	MassSpectrumCount []uint32
	SignalSum         []uint64
	SignalNormalized  []float64
}

func (v *Spectra) Kind() Kind { return KindSpectra }
func (v *Spectra) Len() int   { return len(v.RetentionTime) }

func (v *Spectra) columns() []namedColumn {
	return []namedColumn{
		{ColRetentionTime, v.RetentionTime},
		{ColMassSpectrum, v.MassSpectrum},
		{ColMassSpectrumCount, v.MassSpectrumCount},
		{ColSignalSum, v.SignalSum},
		{ColSignalNormalized, v.SignalNormalized},
	}
}

func (v *Spectra) Columns() []string { return columnNames(v.columns()) }

func (v *Spectra) Column(name string) (any, error) { return lookupColumn(v.columns(), name) }
