package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/model"
)

func resetSearchFlags() {
	searchTopK = 10
	searchLang = ""
	searchPath = ""
	searchKind = ""
	searchTag = ""
	searchNameOnly = false
}

func TestBuildQueryMapsFlagsToFilters(t *testing.T) {
	chdirTemp(t)
	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	resetSearchFlags()
	t.Cleanup(resetSearchFlags)
	searchLang = "go"
	searchPath = "internal/**"
	searchKind = "function"
	searchTag = "public"
	searchTopK = 25
	searchNameOnly = true

	q := buildQuery(app, "widget factory")

	require.Equal(t, "widget factory", q.Text)
	require.True(t, q.NameOnly)
	require.Equal(t, 25, q.TopK)
	require.Equal(t, "go", q.Filters.Language)
	require.Equal(t, "internal/**", q.Filters.PathGlob)
	require.Equal(t, model.ChunkKind("function"), q.Filters.Kind)
	require.Equal(t, "public", q.Filters.Tag)
}

// writeAndIndex creates a single Go source file in dir and runs the
// indexer over it, so search/similar/where have real chunks to query.
func writeAndIndex(t *testing.T, dir string) {
	t.Helper()
	src := "package widget\n\n// NewFactory builds a Widget.\nfunc NewFactory() *Widget { return &Widget{} }\n\ntype Widget struct{}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.go"), []byte(src), 0o644))

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()
	_, err = app.Indexer.Run(t.Context(), false)
	require.NoError(t, err)
}

func TestRunSearchFindsIndexedChunk(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	resetSearchFlags()
	t.Cleanup(resetSearchFlags)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	res, err := app.Retrieval.Search(t.Context(), buildQuery(app, "NewFactory"))
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
}

func TestRunWhereGroupsHitsByOrigin(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	resetSearchFlags()
	t.Cleanup(resetSearchFlags)

	out := captureStdout(t, func() {
		cmd := &cobra.Command{}
		cmd.SetContext(t.Context())
		require.NoError(t, runWhere(cmd, []string{"NewFactory"}))
	})
	require.Contains(t, out, "widget.go")
}

func TestRunSimilarExcludesQueryChunkItself(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	resetSearchFlags()
	t.Cleanup(resetSearchFlags)

	out := captureStdout(t, func() {
		cmd := &cobra.Command{}
		cmd.SetContext(t.Context())
		require.NoError(t, runSimilar(cmd, []string{"NewFactory"}))
	})
	require.NotContains(t, out, "NewFactory",
		"similar's own hit list must exclude the chunk the query was run against")
}
