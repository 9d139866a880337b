package services

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/infrastructure"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/license"
)

// LicenseService provides the business operations behind the status API.
type LicenseService interface {
	// GetStatus reports whether the current version is authorized and
	// whether the build-expiration gate allows execution.
	GetStatus(ctx context.Context) (*StatusResponse, error)

	// Activate verifies a submitted access code and persists the
	// acceptance. Returns ErrInvalidAccessCode on a bad code and
	// ErrBuildExpired when the gate blocks execution.
	Activate(ctx context.Context, code string) error
}

// StatusResponse is the standardized license status payload.
type StatusResponse struct {
	// RFC 7807-style fields for error-shaped statuses.
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`

	LicenseStatus string    `json:"license_status"` // authorized|not_authorized|blocked
	Message       string    `json:"message"`
	Product       string    `json:"product"`
	Version       string    `json:"version"`
	BuildExpiry   string    `json:"build_expiry,omitempty"`
	TraceID       string    `json:"trace_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// ExpiryPolicy carries the gate inputs resolved once at startup.
type ExpiryPolicy struct {
	// Expiry is the parsed build expiration; zero when none is stamped.
	Expiry time.Time

	// MetadataErr is the typed parse condition when Expiry is unusable.
	MetadataErr error

	// AllowOnMissing is the deployment's deliberate default for
	// missing/malformed metadata.
	AllowOnMissing bool

	// OverrideMarker is the marker file that disables the gate.
	OverrideMarker string
}

// Blocked evaluates the gate at the given instant.
func (p ExpiryPolicy) Blocked(now time.Time) bool {
	if p.MetadataErr != nil {
		return !p.AllowOnMissing
	}
	override := license.OverridePresent(p.OverrideMarker)
	return license.EvaluateExpiry(p.Expiry, now, override) == license.DecisionBlocked
}

type licenseService struct {
	verifier *license.Verifier
	policy   ExpiryPolicy
	logger   *slog.Logger
	now      func() time.Time
}

// NewLicenseService builds the service over an already-wired verifier.
func NewLicenseService(verifier *license.Verifier, policy ExpiryPolicy, logger *slog.Logger) LicenseService {
	return &licenseService{
		verifier: verifier,
		policy:   policy,
		logger:   logger.With(slog.String("component", "license_service")),
		now:      time.Now,
	}
}

func (s *licenseService) GetStatus(ctx context.Context) (*StatusResponse, error) {
	identity := s.verifier.Identity()
	resp := &StatusResponse{
		Product:   identity.Name,
		Version:   identity.Version,
		TraceID:   infrastructure.GetTraceID(ctx),
		Timestamp: s.now(),
	}
	if s.policy.MetadataErr == nil {
		resp.BuildExpiry = s.policy.Expiry.Format("2006-01-02")
	}

	authorized := s.verifier.IsAuthorized()

	switch {
	case s.policy.Blocked(s.now()):
		resp.Status = http.StatusForbidden
		resp.LicenseStatus = "blocked"
		if s.policy.MetadataErr != nil {
			resp.Message = license.MissingExpiryMessage()
		} else {
			resp.Message = license.ExpiryMessage(s.policy.Expiry, authorized)
		}
	case authorized:
		resp.Status = http.StatusOK
		resp.LicenseStatus = "authorized"
		resp.Message = "This version is authorized on this machine."
	default:
		resp.Status = http.StatusPreconditionRequired
		resp.LicenseStatus = "not_authorized"
		resp.Message = "No acceptance recorded for this version. Enter an access code to continue."
	}

	s.logger.InfoContext(ctx, "license status requested",
		slog.String("license_status", resp.LicenseStatus))
	return resp, nil
}

func (s *licenseService) Activate(ctx context.Context, code string) error {
	if s.policy.Blocked(s.now()) {
		return apperrors.ErrBuildExpired
	}

	return s.verifier.Accept(ctx, code)
}
