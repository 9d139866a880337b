package license

import (
	"fmt"
	"time"

	"github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/config"
	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

// Decision is the expiration gate's verdict.
type Decision int

const (
	DecisionAllowed Decision = iota
	DecisionBlocked
)

func (d Decision) String() string {
	if d == DecisionBlocked {
		return "blocked"
	}
	return "allowed"
}

// expiryLayout is the fixed, locale-independent format the release
// process stamps into the build metadata.
const expiryLayout = "2006-01-02"

// EvaluateExpiry is the pure gate decision: blocked iff now is past the
// expiration date and no override is present.
func EvaluateExpiry(expiry, now time.Time, overridePresent bool) Decision {
	if now.After(expiry) && !overridePresent {
		return DecisionBlocked
	}
	return DecisionAllowed
}

// ParseBuildExpiry parses the stamped expiration date. Empty or
// malformed metadata is the explicit ErrNoExpiryMetadata condition; the
// caller decides the safe default, it is never applied implicitly here.
func ParseBuildExpiry(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: build carries no expiration date", apperrors.ErrNoExpiryMetadata)
	}
	t, err := time.Parse(expiryLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %s", apperrors.ErrNoExpiryMetadata, s, expiryLayout)
	}
	return t, nil
}

// OverridePresent checks for the marker artifact beside the executable
// that unconditionally disables the gate.
func OverridePresent(markerPath string) bool {
	return config.FileExists(markerPath)
}

// ExpiryMessage selects the user-facing phrasing for a blocked build.
// Returning users (authorization already granted) get the renewal
// wording; first-time users get the evaluation wording. Presentation
// only, layered on top of the gate's decision.
func ExpiryMessage(expiry time.Time, alreadyAuthorized bool) string {
	date := expiry.Format(expiryLayout)
	if alreadyAuthorized {
		return fmt.Sprintf("This build of PlanComplexity expired on %s. "+
			"Please download the current release to continue using the tool.", date)
	}
	return fmt.Sprintf("This evaluation build expired on %s. "+
		"Please obtain the current release before first use.", date)
}

// MissingExpiryMessage explains a refusal when the build carries no
// usable expiration date and the deployment is configured to fail
// closed. There is no date to show, so the expired-on wording does not
// apply.
func MissingExpiryMessage() string {
	return "This build carries no valid expiration date and cannot run. " +
		"Please obtain a correctly stamped release."
}
