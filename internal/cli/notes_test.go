package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotesAddUpdateRemove(t *testing.T) {
	chdirTemp(t)
	cmd := rootCmd

	noteSentiment = 0.5
	noteMentions = "NewFactory"
	t.Cleanup(func() {
		noteSentiment = 0
		noteMentions = ""
	})

	out := captureStdout(t, func() {
		require.NoError(t, notesAddCmd.RunE(cmd, []string{"Widget construction is slow"}))
	})
	require.Contains(t, out, "added note")

	out = captureStdout(t, func() {
		require.NoError(t, notesUpdateCmd.RunE(cmd, []string{"Widget construction is slow", "Widget construction got faster"}))
	})
	require.Contains(t, out, "updated note")

	out = captureStdout(t, func() {
		require.NoError(t, notesRemoveCmd.RunE(cmd, []string{"Widget construction got faster"}))
	})
	require.Contains(t, out, "removed note")
}

func TestAuditModeTogglesOnAndOff(t *testing.T) {
	chdirTemp(t)
	cmd := rootCmd

	out := captureStdout(t, func() {
		require.NoError(t, auditModeCmd.RunE(cmd, nil))
	})
	require.Contains(t, out, "audit mode is off")

	out = captureStdout(t, func() {
		require.NoError(t, auditModeCmd.RunE(cmd, []string{"on"}))
	})
	require.Contains(t, out, "audit mode is now on")

	out = captureStdout(t, func() {
		require.NoError(t, auditModeCmd.RunE(cmd, nil))
	})
	require.Contains(t, out, "audit mode is on")
}

func TestSplitMentionsTrimsAndDropsEmpty(t *testing.T) {
	require.Equal(t, []string{"Foo", "Bar"}, splitMentions(" Foo, Bar ,, "))
	require.Nil(t, splitMentions(""))
}
