// Package msview computes and caches derived views of mass-spectrometry
// acquisitions. A Viewer owns the loaded datasets and one memoizing cache
// per view family; renderers ask it for a view every frame and get the
// stored result back until the dataset or a view-shaping setting changes.
package msview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bpowers/msview/cache"
	"github.com/bpowers/msview/dataset"
	"github.com/bpowers/msview/internal/logging"
	"github.com/bpowers/msview/reshape"
	"github.com/bpowers/msview/settings"
)

// Cache names, as reported by Stats and in metric labels.
const (
	TableCache   = "table"
	SpectraCache = "spectra"
)

// ErrNoStore is returned by operations that need a Store when the Viewer
// was created without one.
var ErrNoStore = errors.New("no acquisition store configured")

// Viewer serves derived views of loaded datasets. It is safe for
// concurrent use.
type Viewer struct {
	registry *dataset.Registry
	store    dataset.Store
	logger   *slog.Logger

	tables  *cache.Cache[reshape.TableKey, reshape.View]
	spectra *cache.Cache[reshape.SpectraKey, *reshape.Spectra]
}

// New creates a Viewer with no datasets loaded.
func New(opts ...Option) *Viewer {
	o := options{cacheCapacity: cache.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.Component("viewer")
	}
	cacheOpts := []cache.Option{
		cache.WithCapacity(o.cacheCapacity),
		cache.WithLogger(logger),
	}
	return &Viewer{
		registry: dataset.NewRegistry(),
		store:    o.store,
		logger:   logger,
		tables:   cache.New[reshape.TableKey, reshape.View](TableCache, cacheOpts...),
		spectra:  cache.New[reshape.SpectraKey, *reshape.Spectra](SpectraCache, cacheOpts...),
	}
}

// Load registers ds and returns its ID.
func (v *Viewer) Load(ds *dataset.Dataset) (dataset.ID, error) {
	id, err := v.registry.Add(ds)
	if err != nil {
		return 0, fmt.Errorf("load dataset: %w", err)
	}
	v.logger.Info("dataset loaded", "dataset", id, "scans", ds.Len(), "peaks", ds.Peaks())
	return id, nil
}

// Open loads a saved acquisition from the store.
func (v *Viewer) Open(acquisitionID string) (dataset.ID, error) {
	if v.store == nil {
		return 0, ErrNoStore
	}
	ds, err := v.store.Load(acquisitionID)
	if err != nil {
		return 0, fmt.Errorf("open acquisition %s: %w", acquisitionID, err)
	}
	return v.Load(ds)
}

// Save writes the dataset loaded under id to the store as a new
// acquisition and returns the acquisition ID.
func (v *Viewer) Save(id dataset.ID, name string) (string, error) {
	if v.store == nil {
		return "", ErrNoStore
	}
	ds, err := v.registry.Get(id)
	if err != nil {
		return "", err
	}
	acqID, err := v.store.Save(name, ds)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", id, err)
	}
	return acqID, nil
}

// Replace swaps the dataset loaded under id for ds. The returned ID is new;
// views of the old ID are dropped and never served for ds.
func (v *Viewer) Replace(id dataset.ID, ds *dataset.Dataset) (dataset.ID, error) {
	newID, err := v.registry.Replace(id, ds)
	if err != nil {
		return 0, fmt.Errorf("replace %s: %w", id, err)
	}
	dropped := v.purge(id)
	v.logger.Info("dataset replaced", "old", id, "new", newID, "dropped_views", dropped)
	return newID, nil
}

// Close unloads id and drops its cached views.
func (v *Viewer) Close(id dataset.ID) error {
	if !v.registry.Contains(id) {
		return fmt.Errorf("close: %w: %s", dataset.ErrNotFound, id)
	}
	v.registry.Remove(id)
	dropped := v.purge(id)
	v.logger.Info("dataset closed", "dataset", id, "dropped_views", dropped)
	return nil
}

func (v *Viewer) purge(id dataset.ID) int {
	n := v.tables.Purge(func(k reshape.TableKey) bool { return k.DatasetID() == id })
	n += v.spectra.Purge(func(k reshape.SpectraKey) bool { return k.DatasetID() == id })
	return n
}

// Datasets returns the IDs of the loaded datasets in load order.
func (v *Viewer) Datasets() []dataset.ID {
	return v.registry.IDs()
}

// Dataset returns the dataset loaded under id.
func (v *Viewer) Dataset(id dataset.ID) (*dataset.Dataset, error) {
	return v.registry.Get(id)
}

// Table returns the table view of dataset id under s. Settings that only
// affect display never cause a recomputation.
func (v *Viewer) Table(ctx context.Context, id dataset.ID, s settings.Settings) (reshape.View, error) {
	ds, err := v.registry.Get(id)
	if err != nil {
		return nil, err
	}
	key := reshape.NewTableKey(id, s)
	return v.tables.Get(ctx, key, func(context.Context) (reshape.View, error) {
		return reshape.ComputeTable(ds, key.TableParams)
	})
}

// Spectra returns the per-scan spectra view of dataset id under s.
func (v *Viewer) Spectra(ctx context.Context, id dataset.ID, s settings.Settings) (*reshape.Spectra, error) {
	ds, err := v.registry.Get(id)
	if err != nil {
		return nil, err
	}
	key := reshape.NewSpectraKey(id, s)
	return v.spectra.Get(ctx, key, func(context.Context) (*reshape.Spectra, error) {
		return reshape.ComputeSpectra(ds, key.SpectraParams)
	})
}

// Stats returns the statistics of each view cache by name.
func (v *Viewer) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		TableCache:   v.tables.Stats(),
		SpectraCache: v.spectra.Stats(),
	}
}

// Collector exports the view cache statistics to Prometheus.
func (v *Viewer) Collector() prometheus.Collector {
	return cache.NewCollector(v.tables, v.spectra)
}
