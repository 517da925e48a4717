package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCIE10File(t *testing.T) {
	store := NewStore()
	loader := NewLoader(store, zap.NewNop())

	path := writeCSV(t, "cie10.csv", "A090,Diarrea y gastroenteritis\nJ189,Neumonía\n\n")
	count, err := loader.LoadCIE10File(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	snapshot := store.Snapshot()
	assert.True(t, snapshot.IsValidCIE10("A090"))
	assert.True(t, snapshot.IsValidCIE10("J189"))
	assert.False(t, snapshot.IsValidCIE10("B999"))
}

func TestLoadCUPSFile(t *testing.T) {
	store := NewStore()
	loader := NewLoader(store, zap.NewNop())

	content := "890201,2024-01-01,2026-12-31,consulta,18,60,35000,diagnóstico\n" +
		"890301,,,,,,,\n" +
		"873001,not-a-date,,,,,,\n"
	path := writeCSV(t, "cups.csv", content)

	count, err := loader.LoadCUPSFile(path)
	require.NoError(t, err)
	// The malformed row is skipped, not fatal.
	assert.Equal(t, 2, count)

	snapshot := store.Snapshot()
	entry, ok := snapshot.CUPS("890201")
	require.True(t, ok)
	assert.Equal(t, "consulta", entry.ServiceType)
	require.NotNil(t, entry.MinAge)
	assert.Equal(t, 18, *entry.MinAge)
	assert.Equal(t, 35000.0, entry.Tariff)
	assert.Equal(t, "diagnóstico", entry.Purpose)

	open, ok := snapshot.CUPS("890301")
	require.True(t, ok)
	assert.Nil(t, open.ValidFrom)
	assert.Nil(t, open.MinAge)

	_, ok = snapshot.CUPS("873001")
	assert.False(t, ok)
}

func TestLoadCorrespondenceFile(t *testing.T) {
	store := NewStore()
	loader := NewLoader(store, zap.NewNop())

	path := writeCSV(t, "corr.csv", "890201,a090,A091\n873001,O801\nskipped\n")
	count, err := loader.LoadCorrespondenceFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	allowed, ok := store.Snapshot().AllowedDiagnoses("890201")
	require.True(t, ok)
	assert.Equal(t, []string{"A090", "A091"}, allowed)
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(NewStore(), zap.NewNop())
	_, err := loader.LoadCIE10File(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
