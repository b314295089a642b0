package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	ctx := context.Background()
	c := New[testKey, string]("table")
	compute, _ := counting("view")

	for _, k := range []testKey{{1, false}, {1, false}, {2, false}} {
		_, err := c.Get(ctx, k, compute)
		require.NoError(t, err)
	}

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(c)))

	expected := `
# HELP msview_cache_hits_total Requests served from a stored view.
# TYPE msview_cache_hits_total counter
msview_cache_hits_total{cache="table"} 1
# HELP msview_cache_misses_total Requests that found no stored view.
# TYPE msview_cache_misses_total counter
msview_cache_misses_total{cache="table"} 2
# HELP msview_cache_computes_total View computations started.
# TYPE msview_cache_computes_total counter
msview_cache_computes_total{cache="table"} 2
# HELP msview_cache_evictions_total Stored views evicted to make room.
# TYPE msview_cache_evictions_total counter
msview_cache_evictions_total{cache="table"} 1
# HELP msview_cache_entries Views currently stored.
# TYPE msview_cache_entries gauge
msview_cache_entries{cache="table"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"msview_cache_hits_total",
		"msview_cache_misses_total",
		"msview_cache_computes_total",
		"msview_cache_evictions_total",
		"msview_cache_entries",
	))
}
