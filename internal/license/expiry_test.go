package license

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

func TestEvaluateExpiry(t *testing.T) {
	expiry := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		override bool
		want     Decision
	}{
		{
			name: "past expiry without override",
			now:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			want: DecisionBlocked,
		},
		{
			name:     "past expiry with override",
			now:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			override: true,
			want:     DecisionAllowed,
		},
		{
			name: "before expiry",
			now:  time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
			want: DecisionAllowed,
		},
		{
			name: "exactly at expiry",
			now:  expiry,
			want: DecisionAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateExpiry(expiry, tt.now, tt.override))
		})
	}
}

func TestParseBuildExpiry(t *testing.T) {
	expiry, err := ParseBuildExpiry("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), expiry)

	for _, input := range []string{"", "31/12/2026", "soon", "2026-13-40"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := ParseBuildExpiry(input)
			assert.ErrorIs(t, err, apperrors.ErrNoExpiryMetadata)
		})
	}
}

func TestOverridePresent(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "NOEXPIRE")

	assert.False(t, OverridePresent(marker))
	require.NoError(t, os.WriteFile(marker, nil, 0600))
	assert.True(t, OverridePresent(marker))
}

func TestExpiryMessageVariants(t *testing.T) {
	expiry := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	returning := ExpiryMessage(expiry, true)
	firstTime := ExpiryMessage(expiry, false)

	assert.Contains(t, returning, "2020-01-01")
	assert.Contains(t, firstTime, "2020-01-01")
	assert.NotEqual(t, returning, firstTime, "the two audiences get distinct phrasing")
}
