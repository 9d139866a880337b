package license

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the subsystem's OpenTelemetry instruments. A nil
// *Metrics is valid and records nothing, so the verifier works without
// observability wired up.
type Metrics struct {
	AuthorizationChecks metric.Int64Counter
	VerificationFlows   metric.Int64Counter
	InvalidCodes        metric.Int64Counter
	FlowDuration        metric.Float64Histogram
}

// NewMetrics registers the license instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AuthorizationChecks, err = meter.Int64Counter(
		"license_authorization_checks_total",
		metric.WithDescription("Authorization lookups against the acceptance store"),
	); err != nil {
		return nil, err
	}
	if m.VerificationFlows, err = meter.Int64Counter(
		"license_verification_flows_total",
		metric.WithDescription("Completed verification flows by outcome"),
	); err != nil {
		return nil, err
	}
	if m.InvalidCodes, err = meter.Int64Counter(
		"license_invalid_codes_total",
		metric.WithDescription("Access-code submissions that failed verification"),
	); err != nil {
		return nil, err
	}
	if m.FlowDuration, err = meter.Float64Histogram(
		"license_verification_duration_seconds",
		metric.WithDescription("Wall time of verification flows, prompt wait included"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func productAttrs(name, version string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("product", name),
		attribute.String("version", version),
	)
}

// RecordCheck counts one authorization lookup.
func (m *Metrics) RecordCheck(ctx context.Context, name, version string, authorized bool) {
	if m == nil {
		return
	}
	m.AuthorizationChecks.Add(ctx, 1,
		productAttrs(name, version),
		metric.WithAttributes(attribute.Bool("authorized", authorized)))
}

// RecordInvalidCode counts one failed submission.
func (m *Metrics) RecordInvalidCode(ctx context.Context, name, version string) {
	if m == nil {
		return
	}
	m.InvalidCodes.Add(ctx, 1, productAttrs(name, version))
}

// RecordOutcome counts one finished flow and its duration.
func (m *Metrics) RecordOutcome(ctx context.Context, name, version, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	opts := []metric.AddOption{
		productAttrs(name, version),
		metric.WithAttributes(attribute.String("outcome", outcome)),
	}
	m.VerificationFlows.Add(ctx, 1, opts...)
	m.FlowDuration.Record(ctx, d.Seconds(),
		productAttrs(name, version),
		metric.WithAttributes(attribute.String("outcome", outcome)))
}
