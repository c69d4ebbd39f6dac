package ipc

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/composite"
	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/graph"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/retrieval"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

func newTestDeps(t *testing.T) composite.Deps {
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

	return composite.Deps{
		RootDir:   root,
		Store:     st,
		Retrieval: &retrieval.Engine{Store: st, Vectors: vecs, NameIndex: ni, Embedder: provider},
		Graph:     gs,
	}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func TestRegisterToolsDoesNotPanic(t *testing.T) {
	deps := newTestDeps(t)
	s := server.NewMCPServer("cqs-test", "0.0.0")
	require.NotPanics(t, func() { RegisterTools(s, deps) })
}

func TestGatherHandlerRunsCompositeGather(t *testing.T) {
	deps := newTestDeps(t)
	handler := createGatherHandler(deps)

	result, err := handler(context.Background(), toolRequest(map[string]any{"query": "Target"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	var decoded composite.Result
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	require.Equal(t, "gather", decoded.Command)
}

func TestGatherHandlerRequiresQuery(t *testing.T) {
	deps := newTestDeps(t)
	handler := createGatherHandler(deps)

	result, err := handler(context.Background(), toolRequest(map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestScoutHandlerRunsCompositeScout(t *testing.T) {
	deps := newTestDeps(t)
	handler := createScoutHandler(deps)

	result, err := handler(context.Background(), toolRequest(map[string]any{"task": "improve Target"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestTaskHandlerRunsCompositeTask(t *testing.T) {
	deps := newTestDeps(t)
	handler := createTaskHandler(deps)

	result, err := handler(context.Background(), toolRequest(map[string]any{"description": "improve Target", "budget": float64(1000)}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	var decoded composite.Result
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	require.Len(t, decoded.Phases, 5)
}

func TestHealthHandlerRunsCompositeHealth(t *testing.T) {
	deps := newTestDeps(t)
	handler := createHealthHandler(deps)

	result, err := handler(context.Background(), toolRequest(map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestCIHandlerDefaultsGateToHigh(t *testing.T) {
	deps := newTestDeps(t)
	handler := createCIHandler(deps)

	result, err := handler(context.Background(), toolRequest(map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	var decoded composite.Result
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	require.Equal(t, "ci", decoded.Command)
}

func TestBudgetArgDefaultsWhenMissing(t *testing.T) {
	require.Equal(t, DefaultBudget, budgetArg(map[string]any{}))
	require.Equal(t, 1000, budgetArg(map[string]any{"budget": float64(1000)}))
}

func TestStringArgFallsBackOnWrongType(t *testing.T) {
	require.Equal(t, "HEAD", stringArg(map[string]any{"ref": 5}, "ref", "HEAD"))
	require.Equal(t, "main", stringArg(map[string]any{"ref": "main"}, "ref", "HEAD"))
}
