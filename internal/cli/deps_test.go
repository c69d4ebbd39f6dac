package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdirTemp creates a temp project dir, writes a .cqs.toml pinned to the
// hash embedding provider (no Python runtime needed), and chdirs into it
// for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cqsToml := "[embedding]\nprovider = \"hash\"\ndimensions = 16\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cqs.toml"), []byte(cqsToml), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestOpenAppOpensAndCloses(t *testing.T) {
	chdirTemp(t)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	require.NotNil(t, app.Store)
	require.NotNil(t, app.Vectors)
	require.NotNil(t, app.Embedder)
	require.NotNil(t, app.Retrieval)
	require.NotNil(t, app.Graph)
	require.NotNil(t, app.Indexer)
	require.NotNil(t, app.Notes)
	require.NotNil(t, app.Refs)

	app.Close()
}

func TestOpenAppCreatesDataDir(t *testing.T) {
	dir := chdirTemp(t)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	info, err := os.Stat(filepath.Join(dir, dataDirName))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestDefaultWeightsUsesConfigOverridesWhenSet(t *testing.T) {
	chdirTemp(t)

	app, err := OpenApp(t.Context())
	require.NoError(t, err)
	defer app.Close()

	app.Config.Weights.Dense = 2.5
	app.Config.Weights.Lexical = 0
	w := app.DefaultWeights()
	require.Equal(t, 2.5, w.Dense)
	require.NotZero(t, w.Lexical, "zero override should fall back to retrieval.DefaultWeights()'s lexical weight")
}
