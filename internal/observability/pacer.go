package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Pacer is the slot-granting surface being instrumented.
type Pacer interface {
	Acquire(ctx context.Context) (time.Time, error)
}

// InstrumentedPacer records how long callers wait for a dispatch slot.
type InstrumentedPacer struct {
	inner Pacer
	wait  metric.Float64Histogram
}

func NewInstrumentedPacer(inner Pacer, provider *Provider) (*InstrumentedPacer, error) {
	meter := provider.MeterProvider().Meter(scopeName + "/pacer")

	wait, err := meter.Float64Histogram(
		"pacer.wait.duration",
		metric.WithDescription("Time spent waiting for an outbound dispatch slot in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedPacer{inner: inner, wait: wait}, nil
}

func (p *InstrumentedPacer) Acquire(ctx context.Context) (time.Time, error) {
	start := time.Now()
	slot, err := p.inner.Acquire(ctx)

	result := "granted"
	if err != nil {
		result = "cancelled"
	}
	p.wait.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("result", result)))

	return slot, err
}
