package cli

import (
	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/graph"
)

var callersCmd = &cobra.Command{
	Use:   "callers <name>",
	Short: "List call sites that invoke name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		hits, err := app.Graph.Callers(args[0])
		if err != nil {
			return err
		}
		return printHits(hits)
	},
}

var calleesCmd = &cobra.Command{
	Use:   "callees <name>",
	Short: "List functions name calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		hits, err := app.Graph.Callees(args[0])
		if err != nil {
			return err
		}
		return printHits(hits)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <name>",
	Short: "Print a chunk's signature, doc comment, and source text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		chunks, err := app.Store.ChunksByName(args[0])
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return notFound("explain", args[0])
		}
		c := chunks[0]
		return printResult(c, func() {
			printf("%s\n", c.Signature)
			if c.Doc != "" {
				printf("\n%s\n", c.Doc)
			}
			printf("\n%s:%d-%d\n\n%s\n", c.Origin, c.StartLine, c.EndLine, c.Text)
		})
	},
}

var traceMaxDepth int

var traceCmd = &cobra.Command{
	Use:   "trace <src> <tgt>",
	Short: "Find a call path from src to tgt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		path, err := app.Graph.Trace(args[0], args[1], traceMaxDepth)
		if err != nil {
			return err
		}
		return printResult(path, func() {
			if !path.Found {
				printf("no path found from %s to %s\n", args[0], args[1])
				return
			}
			for _, h := range path.Path {
				printf("%s (%s:%d)\n", h.Name, h.Origin, h.Line)
			}
		})
	},
}

var (
	impactDepth        int
	impactSuggestTests bool
)

var impactCmd = &cobra.Command{
	Use:   "impact <name>",
	Short: "Blast radius of changing name: callers, tests, and transitive callers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		hits, err := app.Graph.Impact(args[0], impactDepth, graph.DefaultContextLines)
		if err != nil {
			return err
		}
		if err := printHits(hits); err != nil {
			return err
		}
		if impactSuggestTests {
			tests, err := app.Graph.TestMap(args[0], 0)
			if err != nil {
				return err
			}
			printf("\ncovering tests:\n")
			for _, t := range tests {
				printf("  %s (%s:%d)\n", t.Name, t.Origin, t.Line)
			}
		}
		return nil
	},
}

var testMapCmd = &cobra.Command{
	Use:   "test-map <name>",
	Short: "List tests that exercise name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		hits, err := app.Graph.TestMap(args[0], 0)
		if err != nil {
			return err
		}
		return printHits(hits)
	},
}

var (
	deadIncludePub    bool
	deadMinConfidence string
)

var deadCmd = &cobra.Command{
	Use:   "dead",
	Short: "List chunks with no recorded callers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		conf := graph.Confidence(deadMinConfidence)
		if conf == "" {
			conf = graph.ConfidenceLow
		}
		dead, err := app.Graph.Dead(conf)
		if err != nil {
			return err
		}
		dead = filterDeadPub(dead, deadIncludePub)
		return printResult(dead, func() {
			for _, d := range dead {
				printf("%-6s %-40s %s:%d\n", d.Confidence, d.Name, d.Origin, d.StartLine)
			}
		})
	},
}

var depsReverse bool

var depsCmd = &cobra.Command{
	Use:   "deps <name>",
	Short: "List type edges to or from name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		edges, err := app.Graph.Deps(args[0], depsReverse)
		if err != nil {
			return err
		}
		return printResult(edges, func() {
			for _, e := range edges {
				printf("%-6s %-30s %s:%d\n", e.Kind, e.TargetTypeName, e.Origin, e.Line)
			}
		})
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related <name>",
	Short: "Union of callers, callees, and nearest embedding neighbors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		callers, err := app.Graph.Callers(args[0])
		if err != nil {
			return err
		}
		callees, err := app.Graph.Callees(args[0])
		if err != nil {
			return err
		}

		names := map[string]bool{}
		var related []string
		for _, h := range append(callers, callees...) {
			if !names[h.Name] {
				names[h.Name] = true
				related = append(related, h.Name)
			}
		}

		if chunks, err := app.Store.ChunksByName(args[0]); err == nil && len(chunks) > 0 {
			if results, err := app.Vectors.Chunks.Search(chunks[0].Embedding, 10); err == nil {
				for _, r := range results {
					if r.ID == chunks[0].ID {
						continue
					}
					if c, err := app.Store.ChunkByID(r.ID); err == nil && !names[c.Name] {
						names[c.Name] = true
						related = append(related, c.Name)
					}
				}
			}
		}

		return printResult(related, func() {
			for _, n := range related {
				printf("%s\n", n)
			}
		})
	},
}

// filterDeadPub drops exported (leading-uppercase) names from dead unless
// includePub is set. graph.Searcher.Dead has no notion of exported-ness,
// so the filter lives here.
func filterDeadPub(dead []graph.DeadChunk, includePub bool) []graph.DeadChunk {
	if includePub {
		return dead
	}
	var filtered []graph.DeadChunk
	for _, d := range dead {
		if len(d.Name) > 0 && d.Name[0] >= 'A' && d.Name[0] <= 'Z' {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

func printHits(hits []graph.Hit) error {
	return printResult(hits, func() {
		for _, h := range hits {
			printf("%-40s %s:%d\n", h.Name, h.Origin, h.Line)
		}
	})
}

func init() {
	traceCmd.Flags().IntVar(&traceMaxDepth, "max-depth", graph.DefaultMaxDepth, "maximum BFS depth")

	impactCmd.Flags().IntVar(&impactDepth, "depth", 0, "transitive caller depth (0, or more than 10, uses the maximum of 10)")
	impactCmd.Flags().BoolVar(&impactSuggestTests, "suggest-tests", false, "also print tests that cover name")

	deadCmd.Flags().BoolVar(&deadIncludePub, "include-pub", false, "include exported identifiers in dead-code results")
	deadCmd.Flags().StringVar(&deadMinConfidence, "min-confidence", string(graph.ConfidenceLow), "minimum confidence tier: low, medium, high")

	depsCmd.Flags().BoolVar(&depsReverse, "reverse", false, "treat name as a chunk id and list the type edges that chunk declares, instead of edges pointing at type name")

	rootCmd.AddCommand(callersCmd, calleesCmd, explainCmd, traceCmd, impactCmd, testMapCmd, deadCmd, depsCmd, relatedCmd)
}
