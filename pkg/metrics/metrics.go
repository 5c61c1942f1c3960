// Package metrics provides Prometheus instrumentation for MoGUL resource pools.
//
// # Overview
//
// Each pool records through a Collector bound to its name. The underlying
// vectors are labelled by pool so every subsystem (sprites, fonts, documents)
// shows up as its own series:
//
//	collector := metrics.NewCollector("sprites")
//	collector.CacheHit()
//	collector.SetOccupancy(live, cached)
//
// # Metric Types
//
// Gauges: live and cached (warm, unreferenced) slot counts.
// Counters: cache hits and misses, evictions, loader failures, exhaustion.
// Histogram: loader duration in seconds.
//
// A nil *Collector is valid and records nothing, which keeps pools usable in
// tests and tools that do not care about metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vectors groups the metric vectors shared by every Collector registered
// against the same registry.
type Vectors struct {
	LiveSlots    *prometheus.GaugeVec
	CachedSlots  *prometheus.GaugeVec
	CacheHits    *prometheus.CounterVec
	CacheMisses  *prometheus.CounterVec
	Evictions    *prometheus.CounterVec
	LoadFailures *prometheus.CounterVec
	Exhausted    *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
}

// NewVectors creates and registers the pool metric vectors on reg.
// Registering twice on the same registry panics, as with promauto.
func NewVectors(reg prometheus.Registerer) *Vectors {
	factory := promauto.With(reg)
	return &Vectors{
		LiveSlots: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mogul_pool_live_slots",
				Help: "Number of slots with a non-zero reference count",
			},
			[]string{"pool"},
		),
		CachedSlots: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mogul_pool_cached_slots",
				Help: "Number of unreferenced slots still holding loaded content",
			},
			[]string{"pool"},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mogul_pool_cache_hits_total",
				Help: "Keyed loads served from an existing slot",
			},
			[]string{"pool"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mogul_pool_cache_misses_total",
				Help: "Keyed loads that invoked the loader",
			},
			[]string{"pool"},
		),
		Evictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mogul_pool_evictions_total",
				Help: "Cached slots destroyed to make room for a new allocation",
			},
			[]string{"pool"},
		),
		LoadFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mogul_pool_load_failures_total",
				Help: "Loader invocations that reported failure",
			},
			[]string{"pool"},
		),
		Exhausted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mogul_pool_exhausted_total",
				Help: "Allocations rejected because every slot was live",
			},
			[]string{"pool"},
		),
		LoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mogul_pool_load_duration_seconds",
				Help: "Loader duration in seconds",
				Buckets: []float64{
					1e-5, // 10μs - in-memory decode
					1e-4, // 100μs
					1e-3, // 1ms - small files
					1e-2, // 10ms
					1e-1, // 100ms - large assets
					1,
				},
			},
			[]string{"pool"},
		),
	}
}

// Default holds the vectors registered on the Prometheus default registry.
var Default = NewVectors(prometheus.DefaultRegisterer)

// Collector records metrics for a single pool.
type Collector struct {
	pool string
	v    *Vectors
}

// NewCollector creates a collector for pool on the default registry.
func NewCollector(pool string) *Collector {
	return &Collector{pool: pool, v: Default}
}

// NewCollectorWithVectors creates a collector recording into v.
func NewCollectorWithVectors(pool string, v *Vectors) *Collector {
	return &Collector{pool: pool, v: v}
}

// Pool returns the pool label value.
func (c *Collector) Pool() string {
	if c == nil {
		return ""
	}
	return c.pool
}

// CacheHit counts a keyed load served without the loader.
func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.v.CacheHits.WithLabelValues(c.pool).Inc()
}

// CacheMiss counts a keyed load that needed the loader.
func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.v.CacheMisses.WithLabelValues(c.pool).Inc()
}

// Eviction counts a cached slot destroyed for reuse.
func (c *Collector) Eviction() {
	if c == nil {
		return
	}
	c.v.Evictions.WithLabelValues(c.pool).Inc()
}

// LoadFailure counts a failed loader call.
func (c *Collector) LoadFailure() {
	if c == nil {
		return
	}
	c.v.LoadFailures.WithLabelValues(c.pool).Inc()
}

// Exhausted counts a rejected allocation.
func (c *Collector) Exhausted() {
	if c == nil {
		return
	}
	c.v.Exhausted.WithLabelValues(c.pool).Inc()
}

// ObserveLoad records a loader duration.
func (c *Collector) ObserveLoad(d time.Duration) {
	if c == nil {
		return
	}
	c.v.LoadDuration.WithLabelValues(c.pool).Observe(d.Seconds())
}

// SetOccupancy publishes the live and cached slot counts.
func (c *Collector) SetOccupancy(live, cached int) {
	if c == nil {
		return
	}
	c.v.LiveSlots.WithLabelValues(c.pool).Set(float64(live))
	c.v.CachedSlots.WithLabelValues(c.pool).Set(float64(cached))
}

// Forget drops the pool's series, used when a pool is destroyed.
func (c *Collector) Forget() {
	if c == nil {
		return
	}
	c.v.LiveSlots.DeleteLabelValues(c.pool)
	c.v.CachedSlots.DeleteLabelValues(c.pool)
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called
// repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
