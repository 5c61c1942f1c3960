package resource

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/logger"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/metrics"
)

const tracerName = "github.com/engineerOfLies/MoGUL-sub000/pkg/resource"

// Option customizes a Pool's ambient dependencies.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	clock      Clock
	metrics    *metrics.Collector
	metricsSet bool
	tracer     trace.Tracer
}

// WithLogger sets the logger. The pool adds its own name field.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock sets the clock used to stamp released slots.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMetrics sets the metrics collector. A nil collector disables metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
		o.metricsSet = true
	}
}

// WithTracer sets the tracer used around loader calls.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

func buildOptions(name string, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("resource")
	}
	o.logger = o.logger.With(zap.String("pool", name))
	if o.clock == nil {
		o.clock = NewClock()
	}
	if !o.metricsSet {
		o.metrics = metrics.NewCollector(name)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}
