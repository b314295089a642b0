package reshape

import (
	"github.com/bpowers/msview/dataset"
)

// keptRows returns the scan indices that survive the null filter, in
// acquisition order.
func keptRows(ds *dataset.Dataset, filterNull bool) []int {
	rows := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if filterNull && len(ds.MassToCharge[i]) == 0 {
			continue
		}
		rows = append(rows, i)
	}
	return rows
}

// peakRow is one exploded (scan, peak) pair.
type peakRow struct {
	retentionTime int32
	massToCharge  float32
	signal        uint16
}

// explode flattens the spectra of rows into one peakRow per pair, keeping
// scan order and peak order within a scan. Empty spectra contribute nothing.
func explode(ds *dataset.Dataset, rows []int) []peakRow {
	total := 0
	for _, i := range rows {
		total += len(ds.MassToCharge[i])
	}
	peaks := make([]peakRow, 0, total)
	for _, i := range rows {
		rt := ds.RetentionTime[i]
		signal := ds.Signal[i]
		for j, mz := range ds.MassToCharge[i] {
			peaks = append(peaks, peakRow{
				retentionTime: rt,
				massToCharge:  mz,
				signal:        signal[j],
			})
		}
	}
	return peaks
}
