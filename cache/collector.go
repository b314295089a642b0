package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source is anything that reports cache statistics under a name; every
// *Cache is one.
type Source interface {
	Name() string
	Stats() Stats
}

// Collector exports the statistics of a set of caches to Prometheus. Values
// are read from Stats at scrape time.
type Collector struct {
	sources []Source

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	computes  *prometheus.Desc
	errors    *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
	capacity  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector over sources.
func NewCollector(sources ...Source) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("msview", "cache", name), help, []string{"cache"}, nil)
	}
	return &Collector{
		sources:   sources,
		hits:      desc("hits_total", "Requests served from a stored view."),
		misses:    desc("misses_total", "Requests that found no stored view."),
		computes:  desc("computes_total", "View computations started."),
		errors:    desc("errors_total", "View computations that failed."),
		evictions: desc("evictions_total", "Stored views evicted to make room."),
		entries:   desc("entries", "Views currently stored."),
		capacity:  desc("capacity", "Maximum number of stored views."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.hits, c.misses, c.computes, c.errors, c.evictions, c.entries, c.capacity} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		name := src.Name()
		s := src.Stats()
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.computes, prometheus.CounterValue, float64(s.Computes), name)
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors), name)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions), name)
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries), name)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), name)
	}
}
