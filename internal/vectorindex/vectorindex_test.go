package vectorindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpsertAndSearch(t *testing.T) {
	ix := New(4)
	require.NoError(t, ix.Upsert("a", []float32{1, 0, 0, 0}))
	require.NoError(t, ix.Upsert("b", []float32{0, 1, 0, 0}))

	results, err := ix.Search([]float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a", results[0].ID)
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	ix := New(4)
	err := ix.Upsert("a", []float32{1, 0})
	require.Error(t, err)
}

func TestDeleteOrphansNode(t *testing.T) {
	ix := New(3)
	require.NoError(t, ix.Upsert("a", []float32{1, 0, 0}))
	ix.Delete("a")
	require.Equal(t, 0, ix.Count())

	results, err := ix.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ix := New(3)
	require.NoError(t, ix.Upsert("a", []float32{1, 0, 0}))
	require.NoError(t, ix.Upsert("b", []float32{0, 1, 0}))

	path := filepath.Join(dir, "chunks.hnsw")
	require.NoError(t, ix.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Dimensions())
	require.Equal(t, 2, loaded.Count())

	results, err := loaded.Search([]float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, "a", results[0].ID)
}

func TestStoreOpenCreatesEmptyOnFirstUse(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 768, 769)
	require.NoError(t, err)
	require.Equal(t, 768, s.Chunks.Dimensions())
	require.Equal(t, 769, s.Notes.Dimensions())
}
