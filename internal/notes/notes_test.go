package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "cqs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	inner := embed.NewHashProvider(4)
	np := embed.NewNoteProvider(inner)
	vecs, err := vectorindex.Open(dir, inner.Dimensions(), np.Dimensions())
	require.NoError(t, err)

	m, err := Open(filepath.Join(dir, "docs", "notes.toml"), st, vecs, np)
	require.NoError(t, err)
	return m
}

func TestAddRejectsInvalidSentiment(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(context.Background(), "careful here", model.Sentiment(0.25), nil)
	require.Error(t, err)
}

func TestAddEmbedsAndPersists(t *testing.T) {
	m := newTestManager(t)
	n, err := m.Add(context.Background(), "this module is fragile", model.SentimentNegative, []string{"embed"})
	require.NoError(t, err)
	require.NotEmpty(t, n.Embedding)

	stored, err := m.Store.NoteByID(n.ID)
	require.NoError(t, err)
	require.Equal(t, "this module is fragile", stored.Text)

	data, err := os.ReadFile(m.File.path)
	require.NoError(t, err)
	require.Contains(t, string(data), "this module is fragile")
}

func TestUpdateByExactTextMatch(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add(context.Background(), "old text", model.SentimentNeutral, nil)
	require.NoError(t, err)

	updated, err := m.Update(context.Background(), "old text", "new text", model.SentimentPositive, nil)
	require.NoError(t, err)
	require.Equal(t, "new text", updated.Text)

	_, idx := m.File.ByText("old text")
	require.Equal(t, -1, idx)
}

func TestRemoveByExactTextMatch(t *testing.T) {
	m := newTestManager(t)
	n, err := m.Add(context.Background(), "to be removed", model.SentimentNeutral, nil)
	require.NoError(t, err)

	require.NoError(t, m.Remove("to be removed"))

	_, err = m.Store.NoteByID(n.ID)
	require.Error(t, err)
}

func TestRemoveUnknownTextReturnsNotFound(t *testing.T) {
	m := newTestManager(t)
	err := m.Remove("never added")
	require.Error(t, err)
}

func TestLoadPreservesHeaderComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.toml")
	require.NoError(t, os.WriteFile(path, []byte("# notes for this project\n# do not delete\n\n[[note]]\nid = \"a\"\ntext = \"hi\"\nsentiment = 0\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, string(f.header), "do not delete")
	require.Len(t, f.Notes(), 1)
}
