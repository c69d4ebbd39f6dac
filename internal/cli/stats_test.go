package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStatsReportsChunkCount(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	out := captureStdout(t, func() {
		require.NoError(t, runStats(rootCmd, nil))
	})
	require.Contains(t, out, "chunks:")
	require.Contains(t, out, "last reindex:")
}

func TestStaleOriginsReportsUnmodifiedFileAsNotStale(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	stale, err := staleOrigins(app)
	require.NoError(t, err)
	require.Empty(t, stale)
}

func TestStaleOriginsReportsEditedFileAsStale(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	edited := "package widget\n\n// NewFactory builds a Widget, now with a comment change.\nfunc NewFactory() *Widget { return &Widget{} }\n\ntype Widget struct{}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.go"), []byte(edited), 0o644))

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	stale, err := staleOrigins(app)
	require.NoError(t, err)
	require.Len(t, stale, 1)
}

func TestRunGCRemovesOriginsForDeletedFiles(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "widget.go")))

	out := captureStdout(t, func() {
		require.NoError(t, runGC(rootCmd, nil))
	})
	require.Contains(t, out, "removed 1 stale origin(s)")

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()
	origins, err := app.Store.AllOrigins()
	require.NoError(t, err)
	require.Empty(t, origins)
}
