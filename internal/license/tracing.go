package license

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by the verification flow.
const TracerName = "license-verifier"

// startSpan opens a span over one verification operation on the
// globally registered tracer provider. Before observability is
// initialized the global provider is a no-op, so library use pays
// nothing.
func startSpan(ctx context.Context, operation, name, version string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "license."+operation,
		trace.WithAttributes(
			attribute.String("license.operation", operation),
			attribute.String("product", name),
			attribute.String("version", version),
			attribute.String("component", "license_verifier"),
		),
	)
}

// endSpan closes the span with the flow's result.
func endSpan(span trace.Span, outcome string, start time.Time, err error) {
	span.SetAttributes(
		attribute.String("license.outcome", outcome),
		attribute.Float64("license.duration_ms", float64(time.Since(start).Milliseconds())),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, outcome)
	}
	span.End()
}
