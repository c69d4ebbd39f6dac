// Package cli implements the cqs command-line surface (spec.md §6): a
// single cobra binary exposing init/index/watch/stats/search/graph/
// composite/notes/ref/batch subcommands over the packages built for
// C1-C13, grounded on the teacher's internal/cli/root.go persistent-flag
// and viper-config wiring.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

var (
	jsonOutput   bool
	quiet        bool
	tokenBudget  int
	noStaleCheck bool
)

// rootCmd is the base `cqs` command.
var rootCmd = &cobra.Command{
	Use:   "cqs",
	Short: "Local semantic code intelligence",
	Long: `cqs indexes a repository into searchable, embedded chunks and
exposes hybrid dense+lexical search, call-graph queries, and composite
commands for AI coding agents and humans alike.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, mapping returned errors to the exit
// codes spec.md §6 commits to (0 success, 1 generic, 2 usage, 3 CI gate
// failure — the ci command sets that one itself via os.Exit before
// returning here).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cqsErr *cqserr.Error
		if errors.As(err, &cqsErr) {
			os.Exit(cqsErr.Kind.ExitCode())
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initViperEnv)

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress and non-essential output")
	rootCmd.PersistentFlags().IntVar(&tokenBudget, "tokens", 0, "token budget for composite and search output (0 = unbounded)")
	rootCmd.PersistentFlags().BoolVar(&noStaleCheck, "no-stale-check", false, "skip warning when the index is older than the source tree")
}

// initViperEnv wires CQS_* environment overrides for global flags; the
// per-project .cqs.toml file itself is loaded lazily by each command via
// internal/config, since it needs the resolved root directory first.
func initViperEnv() {
	viper.SetEnvPrefix("CQS")
	viper.AutomaticEnv()
}
