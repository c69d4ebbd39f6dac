package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunContextListsChunksInFile(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	contextMode = ""
	t.Cleanup(func() { contextMode = "" })

	out := captureStdout(t, func() {
		require.NoError(t, runContext(rootCmd, []string{"widget.go"}))
	})
	require.Contains(t, out, "NewFactory")
	require.Contains(t, out, "Widget")
}

func TestRunContextCompactModeOmitsKind(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	contextMode = "compact"
	t.Cleanup(func() { contextMode = "" })

	out := captureStdout(t, func() {
		require.NoError(t, runContext(rootCmd, []string{"widget.go"}))
	})
	require.Contains(t, out, "NewFactory")
	require.NotContains(t, out, "function")
}

func TestRunContextSummaryModePrintsCount(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	contextMode = "summary"
	t.Cleanup(func() { contextMode = "" })

	out := captureStdout(t, func() {
		require.NoError(t, runContext(rootCmd, []string{"widget.go"}))
	})
	require.Contains(t, out, "chunk(s)")
}

func TestRunReadPrintsWholeFileWithoutFocus(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	readFocus = ""

	out := captureStdout(t, func() {
		require.NoError(t, runRead(rootCmd, []string{"widget.go"}))
	})
	require.Contains(t, out, "package widget")
}

func TestRunReadWithFocusPrintsOnlyNamedChunk(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	readFocus = "NewFactory"
	t.Cleanup(func() { readFocus = "" })

	out := captureStdout(t, func() {
		require.NoError(t, runRead(rootCmd, []string{"widget.go"}))
	})
	require.Contains(t, out, "func NewFactory")
	require.NotContains(t, out, "type Widget")
}

func TestRunReadWithUnknownFocusReturnsNotFound(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	readFocus = "NoSuchChunk"
	t.Cleanup(func() { readFocus = "" })

	err := runRead(rootCmd, []string{"widget.go"})
	require.Error(t, err)
}
