package cache

import "log/slog"

// DefaultCapacity keeps only the most recently requested view, which is
// what a single chart or table redrawing every frame needs.
const DefaultCapacity = 1

type options struct {
	capacity int
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*options)

// WithCapacity sets the maximum number of stored entries. Values below 1
// are treated as 1.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = max(n, 1)
	}
}

// WithLogger sets the logger used for cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
