package retrieval

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cqs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	provider := embed.NewHashProvider(8)
	vecs, err := vectorindex.Open(t.TempDir(), provider.Dimensions(), provider.Dimensions()+1)
	require.NoError(t, err)

	chunks := []*model.Chunk{
		{ID: "c1", Origin: "file:a.go", Language: "go", Kind: model.KindFunction, Name: "ParseConfig", Text: "func ParseConfig() {}"},
		{ID: "c2", Origin: "file:b.go", Language: "go", Kind: model.KindFunction, Name: "WriteConfig", Text: "func WriteConfig() {}"},
	}
	for _, c := range chunks {
		vec, err := provider.Embed(context.Background(), []string{c.Text}, embed.EmbedModePassage)
		require.NoError(t, err)
		c.Embedding = vec[0]
		require.NoError(t, st.WriteFile(c.Origin, "hash-"+c.ID, time.Now(), []*model.Chunk{c}, nil, nil))
		require.NoError(t, vecs.Chunks.Upsert(c.ID, c.Embedding))
	}

	ni, err := NewNameIndex(chunks)
	require.NoError(t, err)

	return &Engine{Store: st, Vectors: vecs, NameIndex: ni, Embedder: provider}, st
}

func TestSearchByNameExactMatch(t *testing.T) {
	e, _ := newTestEngine(t)
	res, err := e.Search(context.Background(), Query{Text: "ParseConfig", NameOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	require.Equal(t, "c1", res.Hits[0].Chunk.ID)
}

func TestSearchByNamePrefixMatch(t *testing.T) {
	e, _ := newTestEngine(t)
	res, err := e.Search(context.Background(), Query{Text: "Parse", NameOnly: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
}

func TestHybridSearchReturnsFusedHits(t *testing.T) {
	e, _ := newTestEngine(t)
	res, err := e.Search(context.Background(), Query{Text: "config parser", Weights: DefaultWeights()})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
}

func TestFiltersExcludeNonMatchingLanguage(t *testing.T) {
	e, _ := newTestEngine(t)
	res, err := e.Search(context.Background(), Query{
		Text:    "config",
		Weights: DefaultWeights(),
		Filters: Filters{Language: "rust"},
	})
	require.NoError(t, err)
	require.Empty(t, res.Hits)
}

func TestTokenBudgetPacksGreedilyAndMarksTruncated(t *testing.T) {
	e, _ := newTestEngine(t)
	res, err := e.Search(context.Background(), Query{
		Text:        "config",
		Weights:     DefaultWeights(),
		TokenBudget: 1,
	})
	require.NoError(t, err)
	require.True(t, len(res.Hits) <= 1)
}

func TestFuseRanksDocumentInBothListsHigher(t *testing.T) {
	lists := []rankedList{
		{name: "dense", weight: 1.0, ids: []string{"x", "y"}},
		{name: "lexical", weight: 1.0, ids: []string{"y", "z"}},
	}
	results := fuse(lists, DefaultRRFConstant)
	require.Equal(t, "y", results[0].id)
}
