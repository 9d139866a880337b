package license

import "strings"

// Identity names what is being verified. Supplied by the caller at
// startup and read-only thereafter.
type Identity struct {
	Name    string
	Version string
}

// ConfigKey derives the acceptance-record key for one product version.
// One record per accepted version.
func ConfigKey(name, version string) string {
	return name + codeDelimiter + version
}

// splitConfigKey is the inverse of ConfigKey for keys produced against
// the given product name. Version strings contain dots, never the
// delimiter, so the name prefix is matched literally.
func splitConfigKey(key, name string) (version string, ok bool) {
	prefix := name + codeDelimiter
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return key[len(prefix):], true
}

// CompatibilityPrefix returns the portion of a version used to decide
// whether an older acceptance still covers a newer release. Policy for
// this deployment: major.minor. Patch releases (1.2.0 -> 1.2.7) never
// force re-authorization; minor releases (1.2 -> 1.3) do.
func CompatibilityPrefix(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

// Resolver decides whether a stored acceptance satisfies the current
// version.
type Resolver struct {
	Secret string
	Format CodeFormat
}

// IsAuthorized reports whether the store holds an acceptance covering
// (name, version). Exact match first: the record for this very version
// must verify against the derived code. Otherwise any record for the
// same name whose version shares the compatibility prefix authorizes
// the new release, provided its stored code verifies for the version it
// was recorded under. One matching ancestor suffices; which one is
// irrelevant. Bare key presence with a code that no longer verifies
// does not authorize anything.
func (r Resolver) IsAuthorized(store *Store, name, version string) bool {
	if code, ok := store.Get(ConfigKey(name, version)); ok {
		if Verify(code, Expected(r.Format, name, version, r.Secret)) {
			return true
		}
	}

	prefix := CompatibilityPrefix(version)
	for key, code := range store.All() {
		recVersion, ok := splitConfigKey(key, name)
		if !ok || recVersion == version {
			continue
		}
		if CompatibilityPrefix(recVersion) != prefix {
			continue
		}
		if Verify(code, Expected(r.Format, name, recVersion, r.Secret)) {
			return true
		}
	}
	return false
}
