package observability

import (
	"context"
	"time"

	"socialgate/internal/models"
	"socialgate/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedStorage wraps a storage.Storage implementation with
// OpenTelemetry tracing and metrics instrumentation.
type InstrumentedStorage struct {
	inner    storage.Storage
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

var _ storage.Storage = (*InstrumentedStorage)(nil)

// NewInstrumentedStorage creates a new storage wrapper that records trace spans,
// operation latency histograms, and error counters for every storage method call.
func NewInstrumentedStorage(inner storage.Storage, provider *Provider) (*InstrumentedStorage, error) {
	tracer := provider.TracerProvider().Tracer(scopeName + "/storage")
	meter := provider.MeterProvider().Meter(scopeName + "/storage")

	duration, err := meter.Float64Histogram(
		"storage.operation.duration",
		metric.WithDescription("Duration of call log operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"storage.operation.errors",
		metric.WithDescription("Number of call log operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStorage{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (s *InstrumentedStorage) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "storage."+operation,
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("storage.operation", operation),
		}, attrs...)...),
	)
	return ctx, span
}

func (s *InstrumentedStorage) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	elapsed := time.Since(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("operation", operation))

	s.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		s.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

func (s *InstrumentedStorage) RecordCall(ctx context.Context, record *models.CallRecord) error {
	var attrs []attribute.KeyValue
	if record != nil {
		attrs = append(attrs,
			attribute.String("action", record.Action),
			attribute.String("outcome", record.Outcome))
	}
	ctx, span := s.startSpan(ctx, "RecordCall", attrs...)
	start := time.Now()
	err := s.inner.RecordCall(ctx, record)
	s.record(ctx, span, "RecordCall", start, err)
	return err
}

func (s *InstrumentedStorage) RecentCalls(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	ctx, span := s.startSpan(ctx, "RecentCalls", attribute.Int("limit", limit))
	start := time.Now()
	result, err := s.inner.RecentCalls(ctx, limit)
	s.record(ctx, span, "RecentCalls", start, err)
	return result, err
}

func (s *InstrumentedStorage) OutcomeCounts(ctx context.Context) (map[string]int64, error) {
	ctx, span := s.startSpan(ctx, "OutcomeCounts")
	start := time.Now()
	result, err := s.inner.OutcomeCounts(ctx)
	s.record(ctx, span, "OutcomeCounts", start, err)
	return result, err
}

func (s *InstrumentedStorage) Ping(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Ping")
	start := time.Now()
	err := s.inner.Ping(ctx)
	s.record(ctx, span, "Ping", start, err)
	return err
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
