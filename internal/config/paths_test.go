package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsIn(t *testing.T) {
	paths := PathsIn("/opt/plancomplexity", "PlanComplexity")

	assert.Equal(t, "/opt/plancomplexity", paths.ExecutableDir)
	assert.Equal(t, filepath.Join("/opt/plancomplexity", "PlanComplexity.eula.json"), paths.StoreFile)
	assert.Equal(t, filepath.Join("/opt/plancomplexity", "PlanComplexity.eula.key"), paths.FallbackFile)
	assert.Equal(t, filepath.Join("/opt/plancomplexity", "NOEXPIRE"), paths.OverrideMarker)
}

func TestGetPathsResolvesExecutableDir(t *testing.T) {
	paths, err := GetPaths("PlanComplexity")
	require.NoError(t, err)
	assert.NotEmpty(t, paths.ExecutableDir)
	assert.Equal(t, paths.ExecutableDir, filepath.Dir(paths.StoreFile))
}

func TestEnsureDirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "deploy")
	paths := PathsIn(base, "PlanComplexity")

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.LogsDir)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "marker")

	assert.False(t, FileExists(file))
	assert.False(t, FileExists(dir), "directories do not count")

	require.NoError(t, os.WriteFile(file, nil, 0600))
	assert.True(t, FileExists(file))
}
