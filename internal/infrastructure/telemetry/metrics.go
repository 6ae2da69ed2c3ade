package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instruments creates instruments on one meter and collects registration
// errors. A failed instrument is replaced by a no-op so callers can record
// unconditionally; check Err once all instruments are declared.
type Instruments struct {
	meter metric.Meter
	errs  []error
}

// NewInstruments wraps meter. A nil meter yields no-op instruments.
func NewInstruments(meter metric.Meter) *Instruments {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("")
	}
	return &Instruments{meter: meter}
}

// Err joins every registration error seen so far
func (b *Instruments) Err() error {
	return errors.Join(b.errs...)
}

// Counter counts occurrences
type Counter struct {
	c metric.Int64Counter
}

// Inc adds one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Counter declares a monotonic int64 counter
func (b *Instruments) Counter(name, description, unit string) *Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		b.errs = append(b.errs, err)
		c = noop.Int64Counter{}
	}
	return &Counter{c: c}
}

// Gauge tracks a value that moves both ways, such as in-flight requests
type Gauge struct {
	c metric.Int64UpDownCounter
}

// Add moves the gauge by delta
func (g *Gauge) Add(ctx context.Context, delta int64, attrs ...attribute.KeyValue) {
	g.c.Add(ctx, delta, metric.WithAttributes(attrs...))
}

// Gauge declares an int64 up-down counter
func (b *Instruments) Gauge(name, description, unit string) *Gauge {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		b.errs = append(b.errs, err)
		c = noop.Int64UpDownCounter{}
	}
	return &Gauge{c: c}
}

// Histogram records a distribution
type Histogram struct {
	h metric.Float64Histogram
}

// Record records one observation
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram declares a float64 histogram, with explicit bucket bounds when given
func (b *Instruments) Histogram(name, description, unit string, buckets ...float64) *Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit(unit)}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	h, err := b.meter.Float64Histogram(name, opts...)
	if err != nil {
		b.errs = append(b.errs, err)
		h = noop.Float64Histogram{}
	}
	return &Histogram{h: h}
}
