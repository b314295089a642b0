package msview

import (
	"log/slog"

	"github.com/bpowers/msview/dataset"
)

type options struct {
	cacheCapacity int
	store         dataset.Store
	logger        *slog.Logger
}

// Option configures a Viewer.
type Option func(*options)

// WithCacheCapacity sets how many views each view family keeps. The
// default of 1 keeps only the most recently requested view.
func WithCacheCapacity(n int) Option {
	return func(o *options) {
		o.cacheCapacity = n
	}
}

// WithStore sets the store that Open and Save use.
func WithStore(store dataset.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger for viewer and cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
