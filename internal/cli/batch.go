package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/batch"
	"github.com/jamie8johnson/cqs/internal/graph"
	"github.com/jamie8johnson/cqs/internal/retrieval"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a long-lived session of one command per stdin line, emitting JSONL",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		sess := &batch.Session{Handlers: batchHandlers(app)}
		return sess.Run(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

// batchHandlers wires the same query primitives the interactive commands
// use into batch.Handler functions, so a pipeline stage like
// `search foo | callers` reuses exactly the engine calls `cqs search` and
// `cqs callers` make.
func batchHandlers(app *App) map[string]batch.Handler {
	return map[string]batch.Handler{
		"search": func(ctx context.Context, args []string) (any, []string, error) {
			if len(args) == 0 {
				return nil, nil, notFound("batch.search", "")
			}
			res, err := app.Retrieval.Search(ctx, retrieval.Query{Text: args[0], TopK: 10, TokenBudget: tokenBudget, Weights: app.DefaultWeights()})
			if err != nil {
				return nil, nil, err
			}
			var names []string
			for _, h := range res.Hits {
				if h.Chunk != nil {
					names = append(names, h.Chunk.Name)
				}
			}
			return res.Hits, names, nil
		},
		"callers": func(ctx context.Context, args []string) (any, []string, error) {
			return graphHandler(app.Graph.Callers, args)
		},
		"callees": func(ctx context.Context, args []string) (any, []string, error) {
			return graphHandler(app.Graph.Callees, args)
		},
		"test-map": func(ctx context.Context, args []string) (any, []string, error) {
			if len(args) == 0 {
				return nil, nil, notFound("batch.test-map", "")
			}
			hits, err := app.Graph.TestMap(args[0], 0)
			return hitsAndNames(hits, err)
		},
		"impact": func(ctx context.Context, args []string) (any, []string, error) {
			if len(args) == 0 {
				return nil, nil, notFound("batch.impact", "")
			}
			hits, err := app.Graph.Impact(args[0], 0, graph.DefaultContextLines)
			return hitsAndNames(hits, err)
		},
		"explain": func(ctx context.Context, args []string) (any, []string, error) {
			if len(args) == 0 {
				return nil, nil, notFound("batch.explain", "")
			}
			chunks, err := app.Store.ChunksByName(args[0])
			if err != nil {
				return nil, nil, err
			}
			if len(chunks) == 0 {
				return nil, nil, notFound("batch.explain", args[0])
			}
			return chunks[0], nil, nil
		},
	}
}

func graphHandler(f func(string) ([]graph.Hit, error), args []string) (any, []string, error) {
	if len(args) == 0 {
		return nil, nil, notFound("batch.graph", "")
	}
	hits, err := f(args[0])
	return hitsAndNames(hits, err)
}

func hitsAndNames(hits []graph.Hit, err error) (any, []string, error) {
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.Name)
	}
	return hits, names, nil
}
