package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFallbacks(t *testing.T) {
	snapshot := NewStore().Snapshot()

	t.Run("cie10 shapes", func(t *testing.T) {
		for _, code := range []string{"A09", "A090", "J18.9", "O801", "Z359"} {
			assert.True(t, snapshot.IsValidCIE10(code), code)
		}
		for _, code := range []string{"", "1A00", "ABCD", "A0", "A09.123"} {
			assert.False(t, snapshot.IsValidCIE10(code), code)
		}
	})

	t.Run("cie11 shapes", func(t *testing.T) {
		for _, code := range []string{"1A00", "8B20", "9A00.1", "2C25.Z"} {
			assert.True(t, snapshot.IsValidCIE11(code), code)
		}
		// A CIE-10 shaped code is never accepted as CIE-11.
		for _, code := range []string{"", "A090", "J18", "..."} {
			assert.False(t, snapshot.IsValidCIE11(code), code)
		}
	})

	t.Run("cups shapes", func(t *testing.T) {
		assert.True(t, snapshot.IsValidCUPS("890201"))
		assert.True(t, snapshot.IsValidCUPS("123"))
		assert.False(t, snapshot.IsValidCUPS("12"))
		assert.False(t, snapshot.IsValidCUPS("12345678"))
		assert.False(t, snapshot.IsValidCUPS("89020A"))
	})
}

func TestCatalogMembershipOverridesFormat(t *testing.T) {
	store := NewStore()
	store.LoadCIE10(map[string]struct{}{"A090": {}})
	store.LoadCIE11(map[string]struct{}{"1A00": {}})
	store.LoadCUPS(map[string]CUPSEntry{"890201": {}})

	snapshot := store.Snapshot()

	// Well-shaped codes absent from the loaded catalogs are invalid.
	assert.True(t, snapshot.IsValidCIE10("a090"))
	assert.False(t, snapshot.IsValidCIE10("B999"))
	assert.True(t, snapshot.IsValidCIE11("1A00"))
	assert.False(t, snapshot.IsValidCIE11("2B22"))
	assert.True(t, snapshot.IsValidCUPS("890201"))
	assert.False(t, snapshot.IsValidCUPS("123456"))
}

func TestLoadReplacesNotMerges(t *testing.T) {
	store := NewStore()
	store.LoadCIE10(map[string]struct{}{"A090": {}})
	store.LoadCIE10(map[string]struct{}{"B999": {}})

	snapshot := store.Snapshot()
	assert.False(t, snapshot.IsValidCIE10("A090"))
	assert.True(t, snapshot.IsValidCIE10("B999"))
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore()
	before := store.Snapshot()
	store.LoadCIE10(map[string]struct{}{"A090": {}})

	// The earlier snapshot keeps its format-fallback view.
	assert.True(t, before.IsValidCIE10("B999"))
	assert.False(t, store.Snapshot().IsValidCIE10("B999"))
}

func TestCUPSEntryAndCorrespondence(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore()
	store.LoadCUPS(map[string]CUPSEntry{"890201": {ValidFrom: &from, Tariff: 35000}})
	store.LoadCorrespondence(map[string][]string{"890201": {"A090", "A091"}})

	snapshot := store.Snapshot()

	entry, ok := snapshot.CUPS("890201")
	require.True(t, ok)
	assert.Equal(t, 35000.0, entry.Tariff)
	require.NotNil(t, entry.ValidFrom)
	assert.True(t, entry.ValidFrom.Equal(from))

	allowed, ok := snapshot.AllowedDiagnoses("890201")
	require.True(t, ok)
	assert.Equal(t, []string{"A090", "A091"}, allowed)

	_, ok = snapshot.AllowedDiagnoses("999999")
	assert.False(t, ok)

	cie10, cie11, cups, correspondence := snapshot.Sizes()
	assert.Equal(t, 0, cie10)
	assert.Equal(t, 0, cie11)
	assert.Equal(t, 1, cups)
	assert.Equal(t, 1, correspondence)
}
