package cli

import (
	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/retrieval"
)

var (
	searchTopK     int
	searchLang     string
	searchPath     string
	searchKind     string
	searchTag      string
	searchNameOnly bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid dense+lexical search over the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var similarCmd = &cobra.Command{
	Use:   "similar <name>",
	Short: "Find chunks whose embedding is nearest to the named chunk's",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

var whereCmd = &cobra.Command{
	Use:   "where <desc>",
	Short: "Search and group the hits by file, to suggest where code belongs",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhere,
}

func init() {
	for _, c := range []*cobra.Command{searchCmd} {
		c.Flags().IntVar(&searchTopK, "top-k", 10, "number of results")
		c.Flags().StringVar(&searchLang, "lang", "", "filter by language")
		c.Flags().StringVar(&searchPath, "path", "", "filter by path glob")
		c.Flags().StringVar(&searchKind, "kind", "", "filter by chunk kind")
		c.Flags().StringVar(&searchTag, "tag", "", "filter by tag")
		c.Flags().BoolVar(&searchNameOnly, "name-only", false, "match only on chunk name, skipping hybrid search")
	}
	rootCmd.AddCommand(searchCmd, similarCmd, whereCmd)
}

func buildQuery(app *App, text string) retrieval.Query {
	return retrieval.Query{
		Text:          text,
		NameOnly:      searchNameOnly,
		TopK:          searchTopK,
		TokenBudget:   tokenBudget,
		Weights:       app.DefaultWeights(),
		NoteThreshold: app.Config.Weights.NoteThreshold,
		NoteWeight:    app.Config.Weights.NoteWeight,
		Filters: retrieval.Filters{
			Language: searchLang,
			PathGlob: searchPath,
			Kind:     model.ChunkKind(searchKind),
			Tag:      searchTag,
		},
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Retrieval.Search(cmd.Context(), buildQuery(app, args[0]))
	if err != nil {
		return err
	}

	return printResult(res, func() {
		for _, h := range res.Hits {
			printf("%-6s %-40s %s:%d\n", h.Source, h.Chunk.Name, h.Chunk.Origin, h.Chunk.StartLine)
		}
		if res.Truncated {
			printf("(truncated to fit token budget)\n")
		}
	})
}

func runSimilar(cmd *cobra.Command, args []string) error {
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
		return notFound("similar", args[0])
	}

	results, err := app.Vectors.Chunks.Search(chunks[0].Embedding, searchTopK+1)
	if err != nil {
		return err
	}

	type hit struct {
		Name   string  `json:"name"`
		Origin string  `json:"origin"`
		Score  float32 `json:"score"`
	}
	var out []hit
	for _, r := range results {
		if r.ID == chunks[0].ID {
			continue
		}
		c, err := app.Store.ChunkByID(r.ID)
		if err != nil {
			continue
		}
		out = append(out, hit{Name: c.Name, Origin: c.Origin, Score: r.Score})
	}

	return printResult(out, func() {
		for _, h := range out {
			printf("%.3f  %-40s %s\n", h.Score, h.Name, h.Origin)
		}
	})
}

func runWhere(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	q := buildQuery(app, args[0])
	q.IncludeParent = true
	res, err := app.Retrieval.Search(cmd.Context(), q)
	if err != nil {
		return err
	}

	groups := map[string][]string{}
	for _, h := range res.Hits {
		if h.Chunk == nil {
			continue
		}
		groups[h.Chunk.Origin] = append(groups[h.Chunk.Origin], h.Chunk.Name)
	}

	return printResult(groups, func() {
		for origin, names := range groups {
			printf("%s\n", origin)
			for _, n := range names {
				printf("  %s\n", n)
			}
		}
	})
}
