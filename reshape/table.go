// Package reshape turns a dataset into derived views. Every function here is
// pure: it reads the dataset and its parameters and returns a freshly
// allocated view, so results can be cached and shared without copying.
package reshape

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/bpowers/msview/dataset"
	"github.com/bpowers/msview/settings"
)

// ErrInvalidParams is returned for parameter values outside their enum.
var ErrInvalidParams = errors.New("invalid view parameters")

// Table computes the table view of ds under s.
func Table(ds *dataset.Dataset, s settings.Settings) (View, error) {
	return ComputeTable(ds, TableParamsOf(s))
}

// ComputeTable computes the table view selected by p:
//
//   - p.Explode: *Flattened, sorted by p.Sort
//   - p.Sort == ByRetentionTime: *GroupedByScan
//   - p.Sort == ByMassToCharge: *GroupedByBucket
//
// The dataset is validated before anything is computed; a corrupt dataset
// yields a *dataset.DataInvariantError and no view.
func ComputeTable(ds *dataset.Dataset, p TableParams) (View, error) {
	if ds == nil {
		return nil, fmt.Errorf("compute table: nil dataset")
	}
	if p.Sort != settings.ByRetentionTime && p.Sort != settings.ByMassToCharge {
		return nil, fmt.Errorf("%w: sort axis %d", ErrInvalidParams, int(p.Sort))
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	rows := keptRows(ds, p.FilterNull)
	switch {
	case p.Explode:
		return flattened(ds, rows, p.Sort), nil
	case p.Sort == settings.ByMassToCharge:
		return groupedByBucket(ds, rows), nil
	default:
		return groupedByScan(ds, rows), nil
	}
}

func flattened(ds *dataset.Dataset, rows []int, axis settings.SortAxis) *Flattened {
	peaks := explode(ds, rows)
	switch axis {
	case settings.ByMassToCharge:
		slices.SortStableFunc(peaks, func(a, b peakRow) int {
			return cmp.Compare(a.massToCharge, b.massToCharge)
		})
	default:
		slices.SortStableFunc(peaks, func(a, b peakRow) int {
			return cmp.Compare(a.retentionTime, b.retentionTime)
		})
	}

	v := &Flattened{
		Index:         make([]uint64, len(peaks)),
		RetentionTime: make([]int32, len(peaks)),
		MassToCharge:  make([]float32, len(peaks)),
		Signal:        make([]uint16, len(peaks)),
	}
	for i, p := range peaks {
		v.Index[i] = uint64(i)
		v.RetentionTime[i] = p.retentionTime
		v.MassToCharge[i] = p.massToCharge
		v.Signal[i] = p.signal
	}
	return v
}

func groupedByScan(ds *dataset.Dataset, rows []int) *GroupedByScan {
	rows = slices.Clone(rows)
	slices.SortStableFunc(rows, func(a, b int) int {
		return cmp.Compare(ds.RetentionTime[a], ds.RetentionTime[b])
	})

	n := len(rows)
	v := &GroupedByScan{
		RetentionTime:     make([]int32, 0, n),
		MassToCharge:      make([][]float32, 0, n),
		Signal:            make([][]uint16, 0, n),
		MassToChargeCount: make([]uint32, 0, n),
		MassToChargeMin:   newNullable[float32](n),
		MassToChargeMax:   newNullable[float32](n),
		SignalCount:       make([]uint32, 0, n),
		SignalMin:         newNullable[uint16](n),
		SignalMax:         newNullable[uint16](n),
		SignalSum:         make([]uint64, 0, n),
	}
	for _, i := range rows {
		mz := ds.MassToCharge[i]
		signal := ds.Signal[i]

		v.RetentionTime = append(v.RetentionTime, ds.RetentionTime[i])
		v.MassToCharge = append(v.MassToCharge, mz)
		v.Signal = append(v.Signal, signal)

		v.MassToChargeCount = append(v.MassToChargeCount, uint32(len(mz)))
		lo, hi, ok := minMax(mz)
		v.MassToChargeMin.append(lo, ok)
		v.MassToChargeMax.append(hi, ok)

		v.SignalCount = append(v.SignalCount, uint32(len(signal)))
		slo, shi, ok := minMax(signal)
		v.SignalMin.append(slo, ok)
		v.SignalMax.append(shi, ok)
		v.SignalSum = append(v.SignalSum, sum(signal))
	}
	return v
}

// bucketGroup accumulates one mass-to-charge bucket.
type bucketGroup struct {
	bucket   float32
	points   []Point
	rtMin    int32
	rtMax    int32
	sigMin   uint16
	sigMax   uint16
	sigTotal uint64
}

func (g *bucketGroup) add(p peakRow) {
	if len(g.points) == 0 {
		g.rtMin, g.rtMax = p.retentionTime, p.retentionTime
		g.sigMin, g.sigMax = p.signal, p.signal
	} else {
		g.rtMin = min(g.rtMin, p.retentionTime)
		g.rtMax = max(g.rtMax, p.retentionTime)
		g.sigMin = min(g.sigMin, p.signal)
		g.sigMax = max(g.sigMax, p.signal)
	}
	g.sigTotal += uint64(p.signal)
	g.points = append(g.points, Point{RetentionTime: p.retentionTime, Signal: p.signal})
}

func groupedByBucket(ds *dataset.Dataset, rows []int) *GroupedByBucket {
	// Buckets always explode, whatever the explode setting says.
	peaks := explode(ds, rows)

	index := make(map[float32]int)
	var groups []*bucketGroup
	for _, p := range peaks {
		b := Bucket(p.massToCharge)
		gi, ok := index[b]
		if !ok {
			gi = len(groups)
			index[b] = gi
			groups = append(groups, &bucketGroup{bucket: b})
		}
		groups[gi].add(p)
	}
	slices.SortStableFunc(groups, func(a, b *bucketGroup) int {
		return cmp.Compare(a.bucket, b.bucket)
	})

	n := len(groups)
	v := &GroupedByBucket{
		MassToCharge:                  make([]float32, n),
		ExtractedIonChromatogram:      make([][]Point, n),
		ExtractedIonChromatogramCount: make([]uint32, n),
		RetentionTimeMin:              make([]int32, n),
		RetentionTimeMax:              make([]int32, n),
		SignalMin:                     make([]uint16, n),
		SignalMax:                     make([]uint16, n),
		SignalSum:                     make([]uint64, n),
	}
	for i, g := range groups {
		v.MassToCharge[i] = g.bucket
		v.ExtractedIonChromatogram[i] = g.points
		v.ExtractedIonChromatogramCount[i] = uint32(len(g.points))
		v.RetentionTimeMin[i] = g.rtMin
		v.RetentionTimeMax[i] = g.rtMax
		v.SignalMin[i] = g.sigMin
		v.SignalMax[i] = g.sigMax
		v.SignalSum[i] = g.sigTotal
	}
	return v
}

// minMax returns the extremes of values; ok is false for an empty list.
func minMax[T cmp.Ordered](values []T) (lo, hi T, ok bool) {
	if len(values) == 0 {
		return lo, hi, false
	}
	return slices.Min(values), slices.Max(values), true
}

// sum adds signal values; an empty list sums to 0.
func sum(values []uint16) uint64 {
	var total uint64
	for _, v := range values {
		total += uint64(v)
	}
	return total
}
