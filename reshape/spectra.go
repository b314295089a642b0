package reshape

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bpowers/msview/dataset"
	"github.com/bpowers/msview/settings"
)

// SpectraOf computes the spectra view of ds under s.
func SpectraOf(ds *dataset.Dataset, s settings.Settings) (*Spectra, error) {
	return ComputeSpectra(ds, SpectraParamsOf(s))
}

// ComputeSpectra groups the peaks of ds into one mass spectrum per distinct
// retention time. Peaks within a spectrum are sorted by mass-to-charge and
// scans without peaks produce no row.
func ComputeSpectra(ds *dataset.Dataset, p SpectraParams) (*Spectra, error) {
	if ds == nil {
		return nil, fmt.Errorf("compute spectra: nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	peaks := explode(ds, keptRows(ds, p.FilterNull))
	slices.SortStableFunc(peaks, func(a, b peakRow) int {
		if c := cmp.Compare(a.retentionTime, b.retentionTime); c != 0 {
			return c
		}
		return cmp.Compare(a.massToCharge, b.massToCharge)
	})

	v := &Spectra{}
	for start := 0; start < len(peaks); {
		rt := peaks[start].retentionTime
		end := start
		var total uint64
		spectrum := make([]Peak, 0)
		for ; end < len(peaks) && peaks[end].retentionTime == rt; end++ {
			spectrum = append(spectrum, Peak{MassToCharge: peaks[end].massToCharge, Signal: peaks[end].signal})
			total += uint64(peaks[end].signal)
		}
		v.RetentionTime = append(v.RetentionTime, rt)
		v.MassSpectrum = append(v.MassSpectrum, spectrum)
		v.MassSpectrumCount = append(v.MassSpectrumCount, uint32(len(spectrum)))
		v.SignalSum = append(v.SignalSum, total)
		start = end
	}

	var peak uint64
	if len(v.SignalSum) > 0 {
		peak = slices.Max(v.SignalSum)
	}
	v.SignalNormalized = make([]float64, len(v.SignalSum))
	for i, total := range v.SignalSum {
		if peak > 0 {
			v.SignalNormalized[i] = float64(total) / float64(peak)
		}
	}
	if v.RetentionTime == nil {
		v.RetentionTime = []int32{}
		v.MassSpectrum = [][]Peak{}
		v.MassSpectrumCount = []uint32{}
		v.SignalSum = []uint64{}
	}
	return v, nil
}
