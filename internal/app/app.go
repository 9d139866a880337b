package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/config"
	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/infrastructure"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/license"
	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/services"
	handlers "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/transport/http"
)

// Application wires configuration, logging, observability, the
// acceptance store and the verifier into one runnable container.
type Application struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	store     *license.Store
	verifier  *license.Verifier
	policy    services.ExpiryPolicy
	service   services.LicenseService
}

// NewApplication loads configuration and assembles the subsystem.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths(cfg.Product.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Product.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	format, err := license.ParseCodeFormat(cfg.Product.CodeFormat)
	if err != nil {
		return nil, err
	}

	store, loadIssue := license.Open(paths.StoreFile, paths.FallbackFile)
	if loadIssue != nil {
		// Typed diagnosis of why the store came back empty. NotFound is
		// the normal first run; parse and I/O issues are worth a warning
		// because the user will be re-prompted.
		level := slog.LevelInfo
		if !errors.Is(loadIssue, apperrors.ErrStoreNotFound) {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "acceptance store loaded empty",
			slog.String("store_path", paths.StoreFile),
			slog.String("reason", loadIssue.Error()))
	}

	metrics, err := license.NewMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	identity := license.Identity{Name: cfg.Product.Name, Version: cfg.Product.Version}
	prompter := license.NewConsolePrompter(os.Stdin, os.Stdout)
	verifier := license.NewVerifier(identity, cfg.Product.EffectiveSecret(), format, store, prompter,
		license.WithLogger(logger),
		license.WithMetrics(metrics),
	)

	policy := services.ExpiryPolicy{
		AllowOnMissing: cfg.Gate.AllowOnMissingExpiry,
		OverrideMarker: paths.OverrideMarker,
	}
	if expiry, err := license.ParseBuildExpiry(config.BuildExpiry); err != nil {
		policy.MetadataErr = err
		logger.Warn("build expiration metadata unusable",
			slog.String("raw", config.BuildExpiry),
			slog.Bool("allow_on_missing", cfg.Gate.AllowOnMissingExpiry),
			slog.String("error", err.Error()))
	} else {
		policy.Expiry = expiry
	}

	return &Application{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		providers: providers,
		store:     store,
		verifier:  verifier,
		policy:    policy,
		service:   services.NewLicenseService(verifier, policy, logger),
	}, nil
}

// Run executes the gate sequence: expiration check, interactive
// verification, then (when enabled) the loopback status API. A blocked
// build or a declined prompt halts the workflow with a typed error and
// no fault.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.policy.Blocked(time.Now()) {
		var msg string
		if a.policy.MetadataErr != nil {
			msg = license.MissingExpiryMessage()
			a.logger.Error("expiration metadata unusable, gate configured to fail closed",
				slog.String("error", a.policy.MetadataErr.Error()))
		} else {
			msg = license.ExpiryMessage(a.policy.Expiry, a.verifier.IsAuthorized())
			a.logger.Error("build expired, refusing to run",
				slog.String("expiry", a.policy.Expiry.Format("2006-01-02")))
		}
		fmt.Fprintln(os.Stderr, msg)
		return apperrors.ErrBuildExpired
	}

	outcome, err := a.verifier.EnsureAccepted(ctx)
	if err != nil {
		return err
	}
	if outcome != license.OutcomeAccepted {
		a.logger.Info("usage terms declined, halting workflow")
		return apperrors.ErrNotAccepted
	}

	if !a.cfg.Server.Enabled {
		return nil
	}
	return a.serve(ctx)
}

func (a *Application) serve(ctx context.Context) error {
	router := handlers.NewRouter(a.service, a.providers.PrometheusHTTP, a.cfg.Server, a.logger)
	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("status API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close flushes observability providers and the log file.
func (a *Application) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.providers != nil {
		if err := a.providers.Shutdown(ctx); err != nil {
			a.logger.Warn("observability shutdown failed", slog.String("error", err.Error()))
		}
	}
	infrastructure.CloseLogger()
}
