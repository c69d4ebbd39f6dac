package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertCmdRequiresScriptEnvVar(t *testing.T) {
	t.Setenv("CQS_PDF_SCRIPT", "")
	require.NoError(t, os.Unsetenv("CQS_PDF_SCRIPT"))

	err := convertCmd.RunE(rootCmd, []string{"doc.pdf"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "CQS_PDF_SCRIPT")
}
