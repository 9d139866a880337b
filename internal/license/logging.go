package license

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/infrastructure"
)

// logAction logs a verifier action with the standard component fields
// and the context's trace ID.
func (v *Verifier) logAction(ctx context.Context, level slog.Level, action, msg string, attrs ...slog.Attr) {
	logger := v.logger
	if logger == nil {
		logger = infrastructure.LoggerWithContext(ctx)
	}

	all := []slog.Attr{
		slog.String("component", "license_verifier"),
		slog.String("action", action),
		slog.String("product", v.identity.Name),
		slog.String("version", v.identity.Version),
	}
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		all = append(all, slog.String("trace_id", traceID))
	}
	all = append(all, attrs...)

	logger.LogAttrs(ctx, level, msg, all...)
}

// maskCode hides most of a user-entered code in logs. Codes prove an
// authorization decision; leaking one through a log file would defeat
// the gate for anyone reading it.
func maskCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) <= 2 {
		return strings.Repeat("*", len(code))
	}
	return code[:2] + strings.Repeat("*", len(code)-2)
}
