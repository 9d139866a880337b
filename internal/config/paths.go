package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all file locations used by the gate subsystem.
// This is the single source of truth for paths: everything is resolved
// relative to the executable directory, never the current working
// directory, so acceptances recorded by one launch are found by the next
// regardless of where the process was started from. The location scheme
// is stable across upgrades; moving it would orphan prior acceptances.
type Paths struct {
	ExecutableDir string
	LogsDir       string

	// StoreFile is the structured acceptance store (JSON, schema-versioned).
	StoreFile string

	// FallbackFile holds flat key=code pairs written when the structured
	// store cannot be saved. It is merged back in on the next load.
	FallbackFile string

	// OverrideMarker disables the build-expiration gate by mere presence.
	OverrideMarker string
}

// GetPaths resolves the path set for the given product name.
func GetPaths(productName string) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return PathsIn(filepath.Dir(exe), productName), nil
}

// PathsIn resolves the path set inside an explicit base directory.
// Tests use this to point the store at a temp directory.
func PathsIn(baseDir, productName string) *Paths {
	return &Paths{
		ExecutableDir:  baseDir,
		LogsDir:        filepath.Join(baseDir, "logs"),
		StoreFile:      filepath.Join(baseDir, productName+".eula.json"),
		FallbackFile:   filepath.Join(baseDir, productName+".eula.key"),
		OverrideMarker: filepath.Join(baseDir, "NOEXPIRE"),
	}
}

// EnsureDirectories creates the directories the subsystem writes into.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ExecutableDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
