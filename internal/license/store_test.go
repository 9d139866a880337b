package license

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

func storePaths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "PlanComplexity.eula.json"), filepath.Join(dir, "PlanComplexity.eula.key")
}

func TestOpenMissingFile(t *testing.T) {
	path, fallback := storePaths(t)

	store, err := Open(path, fallback)
	require.NotNil(t, store)
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path, fallback := storePaths(t)

	store, _ := Open(path, fallback)
	store.Set("Proj-1.0.0", "a1e27681")
	store.Set("Proj-1.2.0", "155a5a9d")
	require.NoError(t, store.Save())

	reloaded, err := Open(path, fallback)
	require.NoError(t, err)
	assert.Equal(t, store.All(), reloaded.All())

	settings := reloaded.Settings()
	assert.True(t, settings.Validated)
	assert.NotEmpty(t, settings.ActivationID, "first save assigns an activation id")
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "store.eula.json")

	store, _ := Open(path, "")
	store.Set("Proj-1.0.0", "a1e27681")
	require.NoError(t, store.Save())
	assert.FileExists(t, path)
}

func TestOpenCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "garbage bytes", content: "\x00\x01 not a store"},
		{name: "truncated json", content: `{"schema_version":2,"codes":{`},
		{name: "wrong value types", content: `{"Proj-1.0.0":42}`},
		{name: "empty file", content: ""},
		{name: "broken xml", content: "<licenseStore><entry key='x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, fallback := storePaths(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			store, err := Open(path, fallback)
			require.NotNil(t, store, "corrupt files degrade to an empty store")
			assert.ErrorIs(t, err, apperrors.ErrStoreParse)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestOpenLegacyV1Document(t *testing.T) {
	path, fallback := storePaths(t)
	legacy := map[string]string{
		"Proj-1.0.0": "a1e27681",
		"Proj-1.2.0": "155a5a9d",
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	store, err := Open(path, fallback)
	require.NoError(t, err)
	assert.Equal(t, legacy, store.All())

	// Saving rewrites the canonical schema.
	require.NoError(t, store.Save())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		SchemaVersion int `json:"schema_version"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 2, doc.SchemaVersion)
}

func TestOpenLegacyXMLDocument(t *testing.T) {
	path, fallback := storePaths(t)
	xmlDoc := `<?xml version="1.0"?>
<licenseStore>
  <entry key="Proj-1.0.0" code="a1e27681"/>
  <entry key="Proj-1.2.0">155a5a9d</entry>
  <entry key="" code="ignored"/>
</licenseStore>`
	require.NoError(t, os.WriteFile(path, []byte(xmlDoc), 0600))

	store, err := Open(path, fallback)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Proj-1.0.0": "a1e27681",
		"Proj-1.2.0": "155a5a9d",
	}, store.All())
}

func TestFallbackMergeAndAbsorb(t *testing.T) {
	path, fallback := storePaths(t)
	require.NoError(t, os.WriteFile(fallback, []byte("Proj-1.0.0=a1e27681\n"), 0600))

	store, err := Open(path, fallback)
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
	code, ok := store.Get("Proj-1.0.0")
	require.True(t, ok, "fallback records must survive to the next run")
	assert.Equal(t, "a1e27681", code)

	// A successful structured save absorbs the fallback file.
	require.NoError(t, store.Save())
	assert.NoFileExists(t, fallback)

	reloaded, err := Open(path, fallback)
	require.NoError(t, err)
	code, ok = reloaded.Get("Proj-1.0.0")
	require.True(t, ok)
	assert.Equal(t, "a1e27681", code)
}

func TestFallbackWinsOverPrimary(t *testing.T) {
	path, fallback := storePaths(t)

	store, _ := Open(path, fallback)
	store.Set("Proj-1.0.0", "old00000")
	require.NoError(t, store.Save())

	// A later failed save left a newer pairing in the fallback file.
	require.NoError(t, os.WriteFile(fallback, []byte("Proj-1.0.0=a1e27681\n"), 0600))

	reloaded, err := Open(path, fallback)
	require.NoError(t, err)
	code, _ := reloaded.Get("Proj-1.0.0")
	assert.Equal(t, "a1e27681", code)
}

func TestWriteFallbackUpserts(t *testing.T) {
	path, fallback := storePaths(t)
	store, _ := Open(path, fallback)

	require.NoError(t, store.WriteFallback("Proj-1.0.0", "old00000"))
	require.NoError(t, store.WriteFallback("Proj-1.0.0", "a1e27681"))
	require.NoError(t, store.WriteFallback("Proj-1.2.0", "155a5a9d"))

	data, err := os.ReadFile(fallback)
	require.NoError(t, err)
	assert.Equal(t, "Proj-1.0.0=a1e27681\nProj-1.2.0=155a5a9d\n", string(data))
}

func TestSaveFailureReturnsTypedError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not a directory"), 0600))

	// Parent "directory" of the store path is a regular file.
	store, _ := Open(filepath.Join(blocker, "store.eula.json"), "")
	store.Set("Proj-1.0.0", "a1e27681")
	assert.ErrorIs(t, store.Save(), apperrors.ErrStoreIO)
}

func TestSetIsIdempotentUpsert(t *testing.T) {
	path, fallback := storePaths(t)
	store, _ := Open(path, fallback)

	store.Set("Proj-1.0.0", "old00000")
	store.Set("Proj-1.0.0", "a1e27681")

	assert.Equal(t, 1, store.Len())
	code, _ := store.Get("Proj-1.0.0")
	assert.Equal(t, "a1e27681", code)
}
