package license

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CodeFormat selects which access-code form a deployment accepts.
// Exactly one format is canonical per deployment; verifying a stored
// record against "whichever matches" would let the two forms alias each
// other, so the format is fixed at construction and never mixed.
type CodeFormat string

const (
	// FormatShort is the canonical 8-hex-character code.
	FormatShort CodeFormat = "short"

	// FormatLong is the historical long form:
	// "MAAS-" + first 4 letters of the product name + "-" + short code.
	FormatLong CodeFormat = "long"
)

const (
	codeDelimiter   = "-"
	shortCodeLength = 8
	longCodePrefix  = "MAAS"
)

// ParseCodeFormat maps a configuration string to a CodeFormat.
func ParseCodeFormat(s string) (CodeFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatShort):
		return FormatShort, nil
	case string(FormatLong):
		return FormatLong, nil
	default:
		return "", fmt.Errorf("unknown code format %q", s)
	}
}

// Derive computes the short access code for a product version: the first
// 8 lowercase hex characters of SHA-256 over the UTF-8 string
// name + "-" + version + "-" + secret. Pure and deterministic.
func Derive(name, version, secret string) string {
	sum := sha256.Sum256([]byte(name + codeDelimiter + version + codeDelimiter + secret))
	return hex.EncodeToString(sum[:])[:shortCodeLength]
}

// DeriveLong computes the historical long-form code, embedding the fixed
// product prefix and the first four letters of the name in upper case.
func DeriveLong(name, version, secret string) string {
	abbr := name
	if len(abbr) > 4 {
		abbr = abbr[:4]
	}
	return longCodePrefix + codeDelimiter + strings.ToUpper(abbr) + codeDelimiter + Derive(name, version, secret)
}

// Expected returns the canonical code for the given format.
func Expected(format CodeFormat, name, version, secret string) string {
	if format == FormatLong {
		return DeriveLong(name, version, secret)
	}
	return Derive(name, version, secret)
}

// Verify reports whether a user-entered code matches the expected one.
// Comparison is case-insensitive and ignores surrounding whitespace, so
// a code read over the phone in capitals still verifies.
func Verify(input, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(input), expected)
}
