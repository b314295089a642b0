// Package cache memoizes derived views. A Cache computes the value of a key
// at most once while that key stays resident: concurrent requests for a
// missing key share one computation, and later requests are served the
// stored value until it is evicted or purged.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bpowers/msview/internal/logging"
)

// Key is a cache key. String must be unique per distinct key value; it
// names the key in logs, spans and the in-flight computation table.
type Key interface {
	comparable
	fmt.Stringer
}

// ComputeFunc produces the value for a missing key.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Stats is a snapshot of a cache's counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Computes  int64 `json:"computes"`
	Errors    int64 `json:"errors"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
}

type entry[K Key, V any] struct {
	key   K
	value V
	seq   uint64
}

// flight tracks a computation in progress for one key.
type flight struct {
	seq    uint64
	purged bool
}

// Cache is a memoizing cache from K to V. Entries are ordered by the
// sequence number of the most recent request that produced or read them;
// when the cache is full the entry with the oldest request is evicted, so
// the most recently requested keys win.
//
// Cache is safe for concurrent use. Stored values are shared between all
// callers and must be treated as read-only.
type Cache[K Key, V any] struct {
	name     string
	capacity int
	logger   *slog.Logger

	mu       sync.Mutex
	entries  map[K]*list.Element
	order    *list.List // *entry[K, V], newest request first
	inflight map[K]*flight
	seq      uint64
	group    singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	computes  atomic.Int64
	errs      atomic.Int64
	evictions atomic.Int64
}

// New returns an empty cache. name labels its logs and metrics.
func New[K Key, V any](name string, opts ...Option) *Cache[K, V] {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.Component("cache")
	}
	return &Cache[K, V]{
		name:     name,
		capacity: o.capacity,
		logger:   logger.With("cache", name),
		entries:  make(map[K]*list.Element),
		order:    list.New(),
		inflight: make(map[K]*flight),
	}
}

// Name returns the name the cache was created with.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the value for key, calling compute if it is not stored.
// Concurrent callers for the same missing key share a single call. An error
// from compute is returned to every caller that shared the call and is not
// stored, so the next Get retries.
//
// If ctx is done before the value is available Get returns ctx.Err(). The
// computation itself keeps running and its result is still stored.
func (c *Cache[K, V]) Get(ctx context.Context, key K, compute ComputeFunc[V]) (V, error) {
	var zero V

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[K, V])
		e.seq = seq
		c.order.MoveToFront(el)
		c.mu.Unlock()

		c.hits.Add(1)
		recordHit(ctx, c.name)
		c.logger.Debug("cache hit", "key", key.String())
		return e.value, nil
	}
	if f, ok := c.inflight[key]; ok {
		f.seq = seq
	}
	c.mu.Unlock()

	c.misses.Add(1)
	recordMiss(ctx, c.name)

	computeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.run(computeCtx, key, seq, compute)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// run is the body of one shared computation.
func (c *Cache[K, V]) run(ctx context.Context, key K, seq uint64, compute ComputeFunc[V]) (V, error) {
	c.mu.Lock()
	// a previous flight may have stored the key after our caller missed
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[K, V])
		if seq > e.seq {
			e.seq = seq
			c.order.MoveToFront(el)
		}
		c.mu.Unlock()
		return e.value, nil
	}
	f := &flight{seq: seq}
	c.inflight[key] = f
	c.mu.Unlock()

	c.computes.Add(1)
	recordCompute(ctx, c.name)
	ctx, span := startComputeSpan(ctx, c.name, key.String())
	defer span.End()

	start := time.Now()
	v, err := compute(ctx)
	elapsed := time.Since(start)
	if err != nil {
		c.mu.Lock()
		if c.inflight[key] == f {
			delete(c.inflight, key)
		}
		c.mu.Unlock()

		c.errs.Add(1)
		recordError(ctx, c.name)
		setSpanError(span, err)
		c.logger.Warn("compute failed", "key", key.String(), "duration", elapsed, "error", err)
		var zero V
		return zero, err
	}

	stored := c.store(ctx, key, v, f)
	setSpanResult(span, stored)
	c.logger.Debug("computed", "key", key.String(), "duration", elapsed, "stored", stored)
	return v, nil
}

// store inserts a computed value unless its key was purged while computing
// or every resident entry was requested more recently.
func (c *Cache[K, V]) store(ctx context.Context, key K, v V, f *flight) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[key] == f {
		delete(c.inflight, key)
	}
	if f.purged {
		return false
	}
	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	for c.order.Len() >= c.capacity {
		back := c.order.Back()
		oldest := back.Value.(*entry[K, V])
		if oldest.seq > f.seq {
			return false
		}
		c.removeLocked(back)
		c.evictions.Add(1)
		recordEviction(ctx, c.name)
		c.logger.Debug("evicted", "key", oldest.key.String())
	}

	e := &entry[K, V]{key: key, value: v, seq: f.seq}
	var el *list.Element
	for at := c.order.Front(); at != nil; at = at.Next() {
		if at.Value.(*entry[K, V]).seq < e.seq {
			el = c.order.InsertBefore(e, at)
			break
		}
	}
	if el == nil {
		el = c.order.PushBack(e)
	}
	c.entries[key] = el
	return true
}

func (c *Cache[K, V]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.entries, e.key)
}

// Peek returns the stored value for key without computing it or touching
// the eviction order or counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Purge removes every entry whose key satisfies pred and returns how many
// were removed. Computations in flight for such keys still return their
// value to their callers but do not store it.
func (c *Cache[K, V]) Purge(pred func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if pred(el.Value.(*entry[K, V]).key) {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	for key, f := range c.inflight {
		if pred(key) {
			f.purged = true
		}
	}
	if removed > 0 {
		c.logger.Debug("purged", "entries", removed)
	}
	return removed
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.Purge(func(K) bool { return true })
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Computes:  c.computes.Load(),
		Errors:    c.errs.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.Len(),
		Capacity:  c.capacity,
	}
}
