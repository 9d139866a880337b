package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrStoreNotFound, ErrStoreParse, ErrStoreIO,
		ErrInvalidAccessCode, ErrPromptCancelled, ErrNotAccepted,
		ErrBuildExpired, ErrNoExpiryMetadata,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}

func TestSentinelWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: /some/path", ErrStoreParse)
	assert.ErrorIs(t, wrapped, ErrStoreParse)
	assert.NotErrorIs(t, wrapped, ErrStoreIO)
}

func TestAPIError(t *testing.T) {
	err := New(http.StatusForbidden, "BUILD_EXPIRED", "expired")
	assert.Equal(t, "expired", err.Error())
	assert.Equal(t, http.StatusForbidden, err.StatusCode)

	var asErr error = err
	var apiErr *APIError
	require.True(t, errors.As(asErr, &apiErr))
}

func TestProblemDetailsMarshalsExtensions(t *testing.T) {
	pd := NewProblemDetails(http.StatusForbidden, "about:blank", "Build expired", "detail text", "/api/license/status").
		WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Build expired", out["title"])
	assert.Equal(t, float64(http.StatusForbidden), out["status"])
	assert.Equal(t, "abc-123", out["trace_id"])
}
