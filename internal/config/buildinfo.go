package config

// Build metadata stamped at release time via -ldflags, e.g.:
//
//	go build -ldflags "-X .../internal/config.Version=1.2.0 \
//	                   -X .../internal/config.BuildExpiry=2026-12-31"
//
// BuildExpiry uses the fixed layout 2006-01-02. An empty or unparsable
// value is surfaced as a distinct condition, never a silent default; the
// gate configuration decides whether that means allow or block.
var (
	// Version is the product version being gated.
	Version = "1.0.0"

	// BuildExpiry is the date after which this build refuses to run
	// unless the override marker is present. Empty means the build
	// carries no expiration.
	BuildExpiry = ""
)
