package composite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/graph"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/retrieval"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	root := t.TempDir()
	st, err := store.Open(filepath.Join(t.TempDir(), "cqs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	provider := embed.NewHashProvider(8)
	vecs, err := vectorindex.Open(t.TempDir(), provider.Dimensions(), provider.Dimensions()+1)
	require.NoError(t, err)

	caller := &model.Chunk{ID: "caller", Origin: "file:a.go", Language: "go", Kind: model.KindFunction, Name: "Caller", Text: "func Caller() { Target() }"}
	target := &model.Chunk{ID: "target", Origin: "file:a.go", Language: "go", Kind: model.KindFunction, Name: "Target", Text: "func Target() {}"}
	for _, c := range []*model.Chunk{caller, target} {
		vec, err := provider.Embed(context.Background(), []string{c.Text}, embed.EmbedModePassage)
		require.NoError(t, err)
		c.Embedding = vec[0]
	}
	calls := []*model.Call{{ChunkID: "caller", CallerName: "Caller", CalleeName: "Target", Origin: "file:a.go", Line: 1}}
	require.NoError(t, st.WriteFile("file:a.go", "hash-a", time.Now(), []*model.Chunk{caller, target}, calls, nil))
	require.NoError(t, vecs.Chunks.Upsert(caller.ID, caller.Embedding))
	require.NoError(t, vecs.Chunks.Upsert(target.ID, target.Embedding))
	require.NoError(t, st.SetEmbeddingIdentity(provider.ModelID(), provider.Dimensions()))
	require.NoError(t, st.SetLastReindex(time.Now()))

	ni, err := retrieval.NewNameIndex([]*model.Chunk{caller, target})
	require.NoError(t, err)

	gs, err := graph.New(st, root)
	require.NoError(t, err)

	return Deps{
		RootDir:   root,
		Store:     st,
		Retrieval: &retrieval.Engine{Store: st, Vectors: vecs, NameIndex: ni, Embedder: provider},
		Graph:     gs,
	}
}

func TestRunCarriesUnusedBudgetForward(t *testing.T) {
	specs := []PhaseSpec{{Name: "a", Weight: 0.5}, {Name: "b", Weight: 0.5}}
	var bBudget int
	fns := map[string]PhaseFunc{
		"a": func(ctx context.Context, budget int) (any, int, error) { return nil, budget / 2, nil },
		"b": func(ctx context.Context, budget int) (any, int, error) { bBudget = budget; return nil, 0, nil },
	}
	res := Run(context.Background(), "test", 100, specs, fns)
	require.False(t, res.Truncated)
	require.Greater(t, bBudget, 50) // b's own 50% share plus a's leftover
}

func TestRunMarksTruncatedOnCancellation(t *testing.T) {
	specs := []PhaseSpec{{Name: "a", Weight: 0.5}, {Name: "b", Weight: 0.5}}
	ctx, cancel := context.WithCancel(context.Background())
	fns := map[string]PhaseFunc{
		"a": func(ctx context.Context, budget int) (any, int, error) { cancel(); return "done", 1, nil },
		"b": func(ctx context.Context, budget int) (any, int, error) { return "unreachable", 1, nil },
	}
	res := Run(ctx, "test", 100, specs, fns)
	require.True(t, res.Truncated)
	require.True(t, res.Phases[1].Skipped)
}

func TestRunTruncatesPhasesExceedingTotalBudget(t *testing.T) {
	specs := []PhaseSpec{{Name: "a", Weight: 1.0}}
	fns := map[string]PhaseFunc{
		"a": func(ctx context.Context, budget int) (any, int, error) { return "big", 1000, nil },
	}
	res := Run(context.Background(), "test", 10, specs, fns)
	require.True(t, res.Truncated)
	require.True(t, res.Phases[0].Skipped)
}

func TestScoutProducesSearchAndEntryPointPhases(t *testing.T) {
	deps := newTestDeps(t)
	res := Scout(context.Background(), deps, "Target", 500)
	require.Equal(t, "scout", res.Command)
	require.Len(t, res.Phases, 2)
	require.Equal(t, "search", res.Phases[0].Name)
}

func TestTaskProducesFivePhases(t *testing.T) {
	deps := newTestDeps(t)
	res := Task(context.Background(), deps, "improve Target", 1000)
	require.Len(t, res.Phases, 5)
}

func TestHealthReportsStatsAndSchema(t *testing.T) {
	deps := newTestDeps(t)
	res := Health(context.Background(), deps, 1000)
	require.Equal(t, "health", res.Command)
	require.Len(t, res.Phases, 3)
	stats, ok := res.Phases[0].Data.(StatsReport)
	require.True(t, ok)
	require.Equal(t, 2, stats.ChunkCount)
}
