package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/composite"
	"github.com/jamie8johnson/cqs/internal/graph"
)

func compositeDeps(app *App) composite.Deps {
	return composite.Deps{RootDir: app.RootDir, Store: app.Store, Retrieval: app.Retrieval, Graph: app.Graph}
}

func runComposite(cmd *cobra.Command, result composite.Result) error {
	return printResult(result, func() {
		for _, p := range result.Phases {
			if p.Skipped {
				printf("-- %s (skipped) --\n", p.Name)
				continue
			}
			printf("-- %s (%d tokens) --\n", p.Name, p.Tokens)
		}
		if result.Truncated {
			printf("(output truncated to fit --tokens budget)\n")
		}
	})
}

var gatherExpand int
var gatherDirection string

var gatherCmd = &cobra.Command{
	Use:   "gather <query>",
	Short: "Search and expand outward through the call graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res := composite.Gather(cmd.Context(), compositeDeps(app), composite.GatherArgs{
			Query: args[0], Expand: gatherExpand, Direction: gatherDirection,
		}, tokenBudget)
		return runComposite(cmd, res)
	},
}

var scoutCmd = &cobra.Command{
	Use:   "scout <task>",
	Short: "Orient to a task: search plus entry-point call graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res := composite.Scout(cmd.Context(), compositeDeps(app), args[0], tokenBudget)
		return runComposite(cmd, res)
	},
}

var taskCmd = &cobra.Command{
	Use:   "task <desc>",
	Short: "Full task waterfall: scout, code, impact, placement, notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res := composite.Task(cmd.Context(), compositeDeps(app), args[0], tokenBudget)
		return runComposite(cmd, res)
	},
}

var onboardCmd = &cobra.Command{
	Use:   "onboard <concept>",
	Short: "Overview of a concept plus who calls into it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res := composite.Onboard(cmd.Context(), compositeDeps(app), args[0], tokenBudget)
		return runComposite(cmd, res)
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review [ref]",
	Short: "Diff against ref (default HEAD), plus impact and test coverage",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		var ref string
		if len(args) == 1 {
			ref = args[0]
		}
		res := composite.Review(cmd.Context(), compositeDeps(app), ref, tokenBudget)
		return runComposite(cmd, res)
	},
}

var impactDiffFrom string
var impactDiffTo string

var impactDiffCmd = &cobra.Command{
	Use:   "impact-diff",
	Short: "Blast radius of everything changed between two refs",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res := composite.ImpactDiff(cmd.Context(), compositeDeps(app), impactDiffFrom, impactDiffTo, tokenBudget)
		return runComposite(cmd, res)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Index size, staleness, and schema identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		res := composite.Health(cmd.Context(), compositeDeps(app), tokenBudget)
		return runComposite(cmd, res)
	},
}

var ciGate string
var ciBaseRef string

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "Dead-code gate suitable for a CI pipeline (exit 3 on failure)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		gate := graph.Confidence(ciGate)
		if gate == "" {
			gate = graph.ConfidenceHigh
		}
		res := composite.CI(cmd.Context(), compositeDeps(app), composite.CIArgs{BaseRef: ciBaseRef, Gate: gate}, tokenBudget)
		if err := runComposite(cmd, res); err != nil {
			return err
		}
		for _, p := range res.Phases {
			if p.Name != "gate" {
				continue
			}
			if verdict, ok := p.Data.(composite.GateVerdict); ok && !verdict.Pass {
				os.Exit(3)
			}
		}
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [ref]",
	Short: "List files changed against ref (default HEAD)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		var ref string
		if len(args) == 1 {
			ref = args[0]
		}
		files, err := composite.ChangedFiles(app.RootDir, ref)
		if err != nil {
			return err
		}
		return printResult(files, func() {
			for _, f := range files {
				printf("%s\n", f)
			}
		})
	},
}

var driftCmd = &cobra.Command{
	Use:   "drift [ref]",
	Short: "Changed files whose index entry is also stale",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		var ref string
		if len(args) == 1 {
			ref = args[0]
		}
		changed, err := composite.ChangedFiles(app.RootDir, ref)
		if err != nil {
			return err
		}
		stale, err := staleOrigins(app)
		if err != nil {
			return err
		}
		staleSet := map[string]bool{}
		for _, o := range stale {
			staleSet["file:"+o] = true
			staleSet[o] = true
		}
		var drifted []string
		for _, f := range changed {
			if staleSet[f] || staleSet["file:"+f] {
				drifted = append(drifted, f)
			}
		}
		return printResult(drifted, func() {
			for _, f := range drifted {
				printf("%s\n", f)
			}
		})
	},
}

var suggestApply bool

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List functions with no test coverage in the call graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		chunks, err := app.Store.AllChunks()
		if err != nil {
			return err
		}
		var untested []string
		for _, c := range chunks {
			if c.Name == "" {
				continue
			}
			tests, err := app.Graph.TestMap(c.Name, 0)
			if err != nil || len(tests) > 0 {
				continue
			}
			untested = append(untested, c.Name)
		}

		if suggestApply {
			printf("--apply is not yet implemented; printing the untested-function list instead\n")
		}
		return printResult(untested, func() {
			for _, n := range untested {
				printf("%s\n", n)
			}
			printf("%d function(s) with no test coverage\n", len(untested))
		})
	},
}

func init() {
	gatherCmd.Flags().IntVar(&gatherExpand, "expand", 0, "number of call-graph hops to expand outward from the search hits")
	gatherCmd.Flags().StringVar(&gatherDirection, "direction", "both", "expand direction: callers, callees, or both")

	impactDiffCmd.Flags().StringVar(&impactDiffFrom, "from", "HEAD", "base ref")
	impactDiffCmd.Flags().StringVar(&impactDiffTo, "to", "", "target ref (empty diffs against the working tree)")

	ciCmd.Flags().StringVar(&ciGate, "gate", string(graph.ConfidenceHigh), "minimum dead-code confidence that fails the gate: low, medium, high")
	ciCmd.Flags().StringVar(&ciBaseRef, "base-ref", "", "ref to run impact-diff against; empty skips that phase")

	suggestCmd.Flags().BoolVar(&suggestApply, "apply", false, "print a notice that stub test generation is unavailable; no files are written")

	rootCmd.AddCommand(gatherCmd, scoutCmd, taskCmd, onboardCmd, reviewCmd, impactDiffCmd,
		healthCmd, ciCmd, diffCmd, driftCmd, suggestCmd)
}
