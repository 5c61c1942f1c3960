package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecords(t *testing.T) {
	v := NewVectors(prometheus.NewRegistry())
	c := NewCollectorWithVectors("fonts", v)

	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.Eviction()
	c.LoadFailure()
	c.Exhausted()
	c.SetOccupancy(3, 2)
	c.ObserveLoad(2 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(v.CacheHits.WithLabelValues("fonts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(v.CacheMisses.WithLabelValues("fonts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(v.Evictions.WithLabelValues("fonts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(v.LoadFailures.WithLabelValues("fonts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(v.Exhausted.WithLabelValues("fonts")))
	assert.Equal(t, 3.0, testutil.ToFloat64(v.LiveSlots.WithLabelValues("fonts")))
	assert.Equal(t, 2.0, testutil.ToFloat64(v.CachedSlots.WithLabelValues("fonts")))
	assert.Equal(t, 1, testutil.CollectAndCount(v.LoadDuration))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.CacheHit()
		c.CacheMiss()
		c.Eviction()
		c.LoadFailure()
		c.Exhausted()
		c.SetOccupancy(1, 1)
		c.ObserveLoad(time.Second)
		c.Forget()
	})
	assert.Equal(t, "", c.Pool())
}

func TestForgetDropsGauges(t *testing.T) {
	v := NewVectors(prometheus.NewRegistry())
	c := NewCollectorWithVectors("tiles", v)
	c.SetOccupancy(1, 0)
	assert.Equal(t, 1, testutil.CollectAndCount(v.LiveSlots))

	c.Forget()
	assert.Equal(t, 0, testutil.CollectAndCount(v.LiveSlots))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("load")
	assert.Equal(t, "load", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
}
