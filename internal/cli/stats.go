package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/chunk"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print index size and freshness",
	RunE:  runStats,
}

var staleCountOnly bool

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List (or count) source files whose index entry is out of date",
	RunE:  runStale,
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove index entries for files that no longer exist",
	RunE:  runGC,
}

func init() {
	staleCmd.Flags().BoolVar(&staleCountOnly, "count-only", false, "print only the number of stale files")
	rootCmd.AddCommand(statsCmd, staleCmd, gcCmd)
}

type statsReport struct {
	Chunks      int    `json:"chunks"`
	Model       string `json:"model"`
	Dimensions  int    `json:"dimensions"`
	LastReindex string `json:"last_reindex,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	count, err := app.Store.ChunkCount()
	if err != nil {
		return err
	}
	identity, err := app.Store.EmbeddingIdentity()
	if err != nil {
		return err
	}
	lastReindex, err := app.Store.LastReindex()
	if err != nil {
		return err
	}

	report := statsReport{Chunks: count, Model: identity.Model, Dimensions: identity.Dim}
	if !lastReindex.IsZero() {
		report.LastReindex = lastReindex.Format("2006-01-02T15:04:05Z07:00")
	}

	return printResult(report, func() {
		printf("chunks:       %s\n", formatNumber(report.Chunks))
		printf("model:        %s (%d dims)\n", report.Model, report.Dimensions)
		if report.LastReindex != "" {
			printf("last reindex: %s\n", report.LastReindex)
		} else {
			printf("last reindex: never\n")
		}
	})
}

// staleOrigins walks the project the same way the indexer does and
// reports every file whose recorded (source_mtime, content_hash) no
// longer matches disk, mirroring indexer.Indexer.indexFile's staleness
// check without actually re-embedding anything.
func staleOrigins(app *App) ([]string, error) {
	files, err := app.Indexer.Discovery.Walk()
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		prior, ok, err := app.Store.OriginState(f.Origin)
		if err != nil {
			return nil, err
		}
		if !ok {
			stale = append(stale, f.Origin)
			continue
		}
		if prior.SourceMtime.Equal(info.ModTime()) {
			continue
		}
		source, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		if prior.ContentHash == chunk.ContentHash(source) {
			continue
		}
		stale = append(stale, f.Origin)
	}
	return stale, nil
}

func runStale(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	stale, err := staleOrigins(app)
	if err != nil {
		return err
	}

	if staleCountOnly {
		return printResult(map[string]int{"count": len(stale)}, func() {
			printf("%d\n", len(stale))
		})
	}
	return printResult(stale, func() {
		for _, o := range stale {
			printf("%s\n", o)
		}
		printf("%d stale file(s)\n", len(stale))
	})
}

func runGC(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	files, err := app.Indexer.Discovery.Walk()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, f := range files {
		seen[f.Origin] = true
	}

	origins, err := app.Store.AllOrigins()
	if err != nil {
		return err
	}
	var removed []string
	for _, o := range origins {
		if !seen[o] {
			if err := app.Store.DeleteOrigin(o); err != nil {
				return err
			}
			removed = append(removed, o)
		}
	}

	return printResult(map[string]any{"removed": removed}, func() {
		printf("removed %d stale origin(s)\n", len(removed))
	})
}
