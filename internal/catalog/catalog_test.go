package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreSeedsDefaults(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	assert.NotZero(t, s.Len())

	p, ok := s.Get("TL-101")
	require.True(t, ok)
	assert.Equal(t, "Rotary Hammer Drill", p.Name)
	assert.Greater(t, p.PricePerDay, 0.0)
}

func TestNewStoreMissingFileSeedsDefaults(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.NotZero(t, s.Len())
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	s, err := NewStore(path)
	require.NoError(t, err)
	s.Put(Product{ID: "TL-901", Name: "Tile Cutter", Brand: "Rubi", Category: "cutting", PricePerDay: 110})
	s.Delete("TL-502")
	require.NoError(t, s.Save())

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, s.Len(), reloaded.Len())

	p, ok := reloaded.Get("TL-901")
	require.True(t, ok)
	assert.Equal(t, "Tile Cutter", p.Name)

	_, ok = reloaded.Get("TL-502")
	assert.False(t, ok)
}

func TestNewStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path)
	assert.Error(t, err)
}

func TestAllSortedByID(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	all := s.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}
