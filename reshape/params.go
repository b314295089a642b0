package reshape

import (
	"fmt"

	"github.com/bpowers/msview/dataset"
	"github.com/bpowers/msview/settings"
)

// TableParams is the part of settings.Settings the table family reads.
// ComputeTable sees nothing else, so a key built from TableParams covers
// every input of the computation and nothing more.
type TableParams struct {
	Explode    bool
	FilterNull bool
	Sort       settings.SortAxis
}

// TableParamsOf projects s onto the fields that shape table views.
func TableParamsOf(s settings.Settings) TableParams {
	return TableParams{
		Explode:    s.Explode,
		FilterNull: s.FilterNull,
		Sort:       s.Sort,
	}
}

// TableKey identifies one table view of one dataset.
type TableKey struct {
	Dataset dataset.ID
	TableParams
}

// NewTableKey builds the cache key of the table view of dataset id under s.
func NewTableKey(id dataset.ID, s settings.Settings) TableKey {
	return TableKey{Dataset: id, TableParams: TableParamsOf(s)}
}

func (k TableKey) String() string {
	return fmt.Sprintf("table/%s/explode=%t/filter_null=%t/sort=%s", k.Dataset, k.Explode, k.FilterNull, k.Sort)
}

// DatasetID returns the dataset the key refers to.
func (k TableKey) DatasetID() dataset.ID { return k.Dataset }

// SpectraParams is the part of settings.Settings the spectra view reads.
type SpectraParams struct {
	FilterNull bool
}

// SpectraParamsOf projects s onto the fields that shape spectra views.
func SpectraParamsOf(s settings.Settings) SpectraParams {
	return SpectraParams{FilterNull: s.FilterNull}
}

// SpectraKey identifies one spectra view of one dataset.
type SpectraKey struct {
	Dataset dataset.ID
	SpectraParams
}

// NewSpectraKey builds the cache key of the spectra view of dataset id under s.
func NewSpectraKey(id dataset.ID, s settings.Settings) SpectraKey {
	return SpectraKey{Dataset: id, SpectraParams: SpectraParamsOf(s)}
}

func (k SpectraKey) String() string {
	return fmt.Sprintf("spectra/%s/filter_null=%t", k.Dataset, k.FilterNull)
}

// DatasetID returns the dataset the key refers to.
func (k SpectraKey) DatasetID() dataset.ID { return k.Dataset }
