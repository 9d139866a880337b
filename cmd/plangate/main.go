package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/app"
	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

func main() {
	os.Exit(run())
}

// run keeps os.Exit out of the path of Application.Close: deferred
// cleanup (observability flush, log file close) runs before the process
// exits, whatever the outcome.
func run() int {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("failed to initialize", slog.String("error", err.Error()))
		return 1
	}
	defer application.Close()

	err = application.Run(context.Background())
	code := exitCode(err)
	if code == 1 {
		slog.Error("gate failed", slog.String("error", err.Error()))
	}
	return code
}

// exitCode maps the gate's outcome to a process exit code. Rejection
// (terms declined, build expired) halts the workflow without a fault;
// the user has already seen the message.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, apperrors.ErrNotAccepted), errors.Is(err, apperrors.ErrBuildExpired):
		return 2
	default:
		return 1
	}
}
