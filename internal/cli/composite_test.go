package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/composite"
)

func TestRunCompositeRendersPhasesAndTruncation(t *testing.T) {
	res := composite.Result{
		Command: "gather",
		Phases: []composite.PhaseResult{
			{Name: "search", Tokens: 42},
			{Name: "expand", Skipped: true},
		},
		Truncated: true,
	}
	out := captureStdout(t, func() {
		require.NoError(t, runComposite(rootCmd, res))
	})
	require.Contains(t, out, "search (42 tokens)")
	require.Contains(t, out, "expand (skipped)")
	require.Contains(t, out, "truncated")
}

func TestGatherCmdReturnsSearchPhase(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	gatherExpand = 0
	gatherDirection = "both"

	out := captureStdout(t, func() {
		cmd := rootCmd
		cmd.SetContext(t.Context())
		require.NoError(t, gatherCmd.RunE(cmd, []string{"NewFactory"}))
	})
	require.Contains(t, out, "search")
}

func TestHealthCmdReportsChunkCount(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)

	out := captureStdout(t, func() {
		cmd := rootCmd
		cmd.SetContext(t.Context())
		require.NoError(t, healthCmd.RunE(cmd, nil))
	})
	require.NotEmpty(t, out)
}

func TestSuggestCmdListsUntestedFunctions(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	suggestApply = false

	out := captureStdout(t, func() {
		cmd := rootCmd
		cmd.SetContext(t.Context())
		require.NoError(t, suggestCmd.RunE(cmd, nil))
	})
	require.Contains(t, out, "NewFactory")
	require.Contains(t, out, "function(s) with no test coverage")
}

func TestSuggestCmdApplyPrintsNotImplementedNotice(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	suggestApply = true
	t.Cleanup(func() { suggestApply = false })

	out := captureStdout(t, func() {
		cmd := rootCmd
		cmd.SetContext(t.Context())
		require.NoError(t, suggestCmd.RunE(cmd, nil))
	})
	require.Contains(t, out, "not yet implemented")
}

func TestDiffCmdListsChangedFilesAgainstHead(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	initGitRepo(t, dir)

	out := captureStdout(t, func() {
		cmd := rootCmd
		cmd.SetContext(t.Context())
		require.NoError(t, diffCmd.RunE(cmd, nil))
	})
	require.Empty(t, out)
}

func TestDriftCmdReturnsEmptyWhenNothingChanged(t *testing.T) {
	dir := chdirTemp(t)
	writeAndIndex(t, dir)
	initGitRepo(t, dir)

	out := captureStdout(t, func() {
		cmd := rootCmd
		cmd.SetContext(t.Context())
		require.NoError(t, driftCmd.RunE(cmd, nil))
	})
	require.Empty(t, out)
}
