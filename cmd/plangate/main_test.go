package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"terms declined", apperrors.ErrNotAccepted, 2},
		{"build expired", apperrors.ErrBuildExpired, 2},
		{"wrapped rejection", fmt.Errorf("gate: %w", apperrors.ErrNotAccepted), 2},
		{"unexpected failure", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
