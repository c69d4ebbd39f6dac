package refs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/embed"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("CQS_DATA_DIR", dataDir)

	m, err := Open(embed.NewHashProvider(8))
	require.NoError(t, err)
	return m
}

func writeSourceFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestAddRejectsMissingPath(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(context.Background(), "lib", filepath.Join(t.TempDir(), "does-not-exist"), 0)
	require.Error(t, err)
}

func TestAddRejectsInvalidName(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(context.Background(), "has/slash", t.TempDir(), 0)
	require.Error(t, err)
}

func TestAddIndexesAndPersistsManifest(t *testing.T) {
	m := newTestManager(t)
	src := t.TempDir()
	writeSourceFile(t, src, "lib.go", "package lib\n\nfunc Helper() int { return 1 }\n")

	ref, err := m.Add(context.Background(), "stdlib-like", src, 2.5)
	require.NoError(t, err)
	require.Equal(t, 2.5, ref.Weight)

	loaded, err := m.Get("stdlib-like")
	require.NoError(t, err)
	require.Equal(t, ref.Path, loaded.Path)
	require.Equal(t, ref.Weight, loaded.Weight)
}

func TestAddRejectsDuplicateName(t *testing.T) {
	m := newTestManager(t)
	src := t.TempDir()
	writeSourceFile(t, src, "a.go", "package a\n")

	_, err := m.Add(context.Background(), "dup", src, 0)
	require.NoError(t, err)

	_, err = m.Add(context.Background(), "dup", src, 0)
	require.Error(t, err)
}

func TestUpdateReindexesIncrementally(t *testing.T) {
	m := newTestManager(t)
	src := t.TempDir()
	writeSourceFile(t, src, "a.go", "package a\n\nfunc A() {}\n")

	_, err := m.Add(context.Background(), "grows", src, 1)
	require.NoError(t, err)

	writeSourceFile(t, src, "b.go", "package a\n\nfunc B() {}\n")
	ref, err := m.Update(context.Background(), "grows", 3)
	require.NoError(t, err)
	require.Equal(t, 3.0, ref.Weight)

	searcher, err := m.Searcher("grows")
	require.NoError(t, err)
	defer searcher.Close()
}

func TestRemoveDeletesStore(t *testing.T) {
	m := newTestManager(t)
	src := t.TempDir()
	writeSourceFile(t, src, "a.go", "package a\n")

	ref, err := m.Add(context.Background(), "gone", src, 0)
	require.NoError(t, err)

	require.NoError(t, m.Remove("gone"))
	_, err = os.Stat(ref.StorePath)
	require.True(t, os.IsNotExist(err))

	_, err = m.Get("gone")
	require.Error(t, err)
}

func TestListReturnsAllRegisteredReferences(t *testing.T) {
	m := newTestManager(t)
	src1, src2 := t.TempDir(), t.TempDir()
	writeSourceFile(t, src1, "a.go", "package a\n")
	writeSourceFile(t, src2, "b.go", "package b\n")

	_, err := m.Add(context.Background(), "one", src1, 0)
	require.NoError(t, err)
	_, err = m.Add(context.Background(), "two", src2, 0)
	require.NoError(t, err)

	refs, err := m.List()
	require.NoError(t, err)
	require.Len(t, refs, 2)
}

func TestSearcherSearchesReferenceVectorNamespace(t *testing.T) {
	m := newTestManager(t)
	src := t.TempDir()
	writeSourceFile(t, src, "a.go", "package a\n\nfunc Widget() {}\n")

	_, err := m.Add(context.Background(), "searchable", src, 1)
	require.NoError(t, err)

	s, err := m.Searcher("searchable")
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, "searchable", s.Name())

	qvec, err := embed.NewHashProvider(8).Embed(context.Background(), []string{"Widget"}, embed.EmbedModeQuery)
	require.NoError(t, err)

	results, err := s.SearchDense(context.Background(), qvec[0], 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}
