// Package prom exports cache and residency signals to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/lrutier/cache"
	"github.com/IvanBrykalov/lrutier/residency"
)

// Adapter implements cache.Metrics and residency.Sink.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   prometheus.Counter
	size     prometheus.Gauge
	capacity prometheus.Gauge

	ticks        prometheus.Counter
	oracleErrors prometheus.Counter
	hitRate      prometheus.Gauge
	resident     *prometheus.GaugeVec
	oracle       *prometheus.GaugeVec
	gap          prometheus.Gauge
}

// New constructs a Prometheus adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:         counter("hits_total", "Cache hits"),
		misses:       counter("misses_total", "Cache misses"),
		evicts:       counter("evictions_total", "LRU evictions"),
		size:         gauge("size_entries", "Number of resident entries"),
		capacity:     gauge("capacity_entries", "Configured entry capacity"),
		ticks:        counter("sample_ticks_total", "Residency samples taken"),
		oracleErrors: counter("oracle_errors_total", "Samples whose oracle aggregates were dropped"),
		hitRate:      gauge("observed_hit_rate", "Cumulative hit rate at the last sample"),
		resident: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "resident_entries",
			Help:        "Cached entries in the slow tier, by scope (all, recent, stable)",
			ConstLabels: constLabels,
		}, []string{"scope"}),
		oracle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "slow_tier",
			Help:        "Oracle slow-tier aggregates, by counter",
			ConstLabels: constLabels,
		}, []string{"counter"}),
		gap: gauge("resident_gap_entries", "Expected minus observed slow-tier entries"),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.size, a.capacity,
		a.ticks, a.oracleErrors, a.hitRate, a.resident, a.oracle, a.gap)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Size updates the entry and capacity gauges.
func (a *Adapter) Size(entries, capacity int) {
	a.size.Set(float64(entries))
	a.capacity.Set(float64(capacity))
}

// Report publishes one residency snapshot. It never fails.
func (a *Adapter) Report(s residency.Snapshot) error {
	a.ticks.Inc()
	a.hitRate.Set(s.HitRate)
	a.resident.WithLabelValues("all").Set(float64(s.ResidentCardinality))
	a.resident.WithLabelValues("recent").Set(float64(s.RecentResidentCardinality))
	a.resident.WithLabelValues("stable").Set(float64(s.StableResidentCardinality))

	o := s.Oracle
	if o == nil {
		a.oracleErrors.Inc()
		return nil
	}
	a.oracle.WithLabelValues("region_count").Set(float64(o.RegionCount))
	a.oracle.WithLabelValues("used_bytes").Set(float64(o.UsedBytes))
	a.oracle.WithLabelValues("live_bytes").Set(float64(o.LiveBytes))
	a.oracle.WithLabelValues("freeable_region_count").Set(float64(o.FreeableRegionCount))
	a.oracle.WithLabelValues("freeable_bytes").Set(float64(o.FreeableBytes))
	a.oracle.WithLabelValues("utilization_pct").Set(o.UtilizationPct)
	a.gap.Set(float64(o.Gap))
	return nil
}

// Compile-time checks.
var (
	_ cache.Metrics  = (*Adapter)(nil)
	_ residency.Sink = (*Adapter)(nil)
)
