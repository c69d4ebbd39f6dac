package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

// convertCmd shells out to the script named by CQS_PDF_SCRIPT. The
// conversion logic itself (PDF/HTML/CHM extraction) is a separate tool
// this binary only invokes, never implements.
var convertCmd = &cobra.Command{
	Use:   "convert <path>",
	Short: "Convert a document to indexable text via the script in CQS_PDF_SCRIPT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script := os.Getenv("CQS_PDF_SCRIPT")
		if script == "" {
			return cqserr.New(cqserr.InvalidInput, "cli.convert", fmt.Errorf("CQS_PDF_SCRIPT is not set"))
		}
		c := exec.CommandContext(cmd.Context(), script, args[0])
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
