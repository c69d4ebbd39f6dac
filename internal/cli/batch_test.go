package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchHandlersSearchReturnsIndexedChunk(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	handlers := batchHandlers(app)
	_, names, err := handlers["search"](t.Context(), []string{"NewFactory"})
	require.NoError(t, err)
	require.Contains(t, names, "NewFactory")
}

func TestBatchHandlersExplainRequiresArg(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	handlers := batchHandlers(app)
	_, _, err = handlers["explain"](t.Context(), nil)
	require.Error(t, err)
}

func TestBatchHandlersRegistersAllCommands(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	handlers := batchHandlers(app)
	for _, name := range []string{"search", "callers", "callees", "test-map", "impact", "explain"} {
		require.Contains(t, handlers, name)
	}
}
