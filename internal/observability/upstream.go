package observability

import (
	"context"
	"strconv"
	"time"

	"socialgate/internal/actions"
	"socialgate/internal/upstream"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Upstream is the call surface being instrumented.
type Upstream interface {
	Get(ctx context.Context, path string, query []actions.QueryParam) (*upstream.Outcome, error)
}

// InstrumentedUpstream records a client span, a latency histogram and a
// response counter for every outbound call.
type InstrumentedUpstream struct {
	inner     Upstream
	tracer    trace.Tracer
	duration  metric.Float64Histogram
	responses metric.Int64Counter
}

func NewInstrumentedUpstream(inner Upstream, provider *Provider) (*InstrumentedUpstream, error) {
	tracer := provider.TracerProvider().Tracer(scopeName + "/upstream")
	meter := provider.MeterProvider().Meter(scopeName + "/upstream")

	duration, err := meter.Float64Histogram(
		"upstream.request.duration",
		metric.WithDescription("Duration of upstream requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	responses, err := meter.Int64Counter(
		"upstream.responses",
		metric.WithDescription("Number of upstream responses by status"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedUpstream{
		inner:     inner,
		tracer:    tracer,
		duration:  duration,
		responses: responses,
	}, nil
}

func (u *InstrumentedUpstream) Get(ctx context.Context, path string, query []actions.QueryParam) (*upstream.Outcome, error) {
	ctx, span := u.tracer.Start(ctx, "upstream.GET "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.path", path)),
	)
	defer span.End()

	start := time.Now()
	outcome, err := u.inner.Get(ctx, path, query)
	elapsed := time.Since(start).Seconds()

	status := "transport_error"
	if err == nil {
		status = strconv.Itoa(outcome.StatusCode)
		span.SetAttributes(attribute.Int("http.response.status_code", outcome.StatusCode))
		if outcome.StatusCode >= 400 {
			span.SetStatus(codes.Error, "upstream status "+status)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	} else {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", status),
	)
	u.duration.Record(ctx, elapsed, attrs)
	u.responses.Add(ctx, 1, attrs)

	return outcome, err
}
