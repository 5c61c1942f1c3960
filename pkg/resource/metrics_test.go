package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/metrics"
)

func TestPoolPublishesMetrics(t *testing.T) {
	v := metrics.NewVectors(prometheus.NewRegistry())
	pool, err := New(Config[sprite]{
		Name:     "tiles",
		Capacity: 2,
		Load: func(_ context.Context, key string, s *sprite) error {
			if key == "missing.png" {
				return errors.New("not found")
			}
			s.path = key
			return nil
		},
	},
		WithLogger(zaptest.NewLogger(t)),
		WithClock(NewManualClock(1)),
		WithMetrics(metrics.NewCollectorWithVectors("tiles", v)),
	)
	require.NoError(t, err)
	ctx := context.Background()

	grass, err := pool.LoadByKey(ctx, "grass.png")
	require.NoError(t, err)
	_, err = pool.LoadByKey(ctx, "grass.png")
	require.NoError(t, err)
	_, err = pool.LoadByKey(ctx, "missing.png")
	require.Error(t, err)
	_, err = pool.LoadByKey(ctx, "water.png")
	require.NoError(t, err)
	_, err = pool.Acquire()
	require.Error(t, err)

	require.NoError(t, pool.Release(grass))
	require.NoError(t, pool.Release(grass))
	_, err = pool.LoadByKey(ctx, "sand.png")
	require.NoError(t, err)

	value := func(c prometheus.Collector) float64 { return promtest.ToFloat64(c) }
	assert.Equal(t, 1.0, value(v.CacheHits.WithLabelValues("tiles")))
	assert.Equal(t, 4.0, value(v.CacheMisses.WithLabelValues("tiles")))
	assert.Equal(t, 1.0, value(v.LoadFailures.WithLabelValues("tiles")))
	assert.Equal(t, 1.0, value(v.Exhausted.WithLabelValues("tiles")))
	assert.Equal(t, 1.0, value(v.Evictions.WithLabelValues("tiles")))
	assert.Equal(t, 2.0, value(v.LiveSlots.WithLabelValues("tiles")))
	assert.Equal(t, 0.0, value(v.CachedSlots.WithLabelValues("tiles")))
	assert.Equal(t, 1, promtest.CollectAndCount(v.LoadDuration))

	pool.Destroy()
	assert.Equal(t, 0, promtest.CollectAndCount(v.LiveSlots))
}
