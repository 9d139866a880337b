package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/services"
)

var validate = validator.New()

// LicenseHandler fronts the license service on the loopback status API.
type LicenseHandler struct {
	service services.LicenseService
	logger  *slog.Logger
}

// NewLicenseHandler creates a new license handler.
func NewLicenseHandler(service services.LicenseService, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "license")),
	}
}

// ActivationRequest is the POST /activate payload.
type ActivationRequest struct {
	Code string `json:"code" validate:"required,min=4,max=64"`
}

// Bind implements the render.Binder interface.
func (a *ActivationRequest) Bind(r *http.Request) error {
	return validate.Struct(a)
}

// ActivationResponse confirms a successful activation.
type ActivationResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Routes returns the chi router for license endpoints.
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/status", h.GetStatus)
	r.Post("/activate", h.Activate)

	return r
}

// GetStatus handles GET /api/license/status.
func (h *LicenseHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.service.GetStatus(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "status check failed", slog.String("error", err.Error()))
		render.Render(w, r, apperrors.ErrInternalServer)
		return
	}

	render.Status(r, status.Status)
	render.JSON(w, r, status)
}

// Activate handles POST /api/license/activate.
func (h *LicenseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ActivationRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apperrors.InvalidRequestWithError(err))
		return
	}

	if err := h.service.Activate(ctx, req.Code); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAccessCode):
			render.Render(w, r, apperrors.ErrInvalidCode)
		case errors.Is(err, apperrors.ErrBuildExpired):
			render.Render(w, r, apperrors.ErrExpiredBuild)
		default:
			h.logger.ErrorContext(ctx, "activation failed", slog.String("error", err.Error()))
			render.Render(w, r, apperrors.ErrInternalServer)
		}
		return
	}

	h.logger.InfoContext(ctx, "access code accepted via status API")
	render.Status(r, http.StatusOK)
	render.JSON(w, r, ActivationResponse{
		Success:   true,
		Message:   "Access code accepted. This version is now authorized.",
		Timestamp: time.Now(),
	})
}
