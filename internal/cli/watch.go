package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/langs"
	"github.com/jamie8johnson/cqs/internal/watcher"
)

var (
	watchDebounce time.Duration
	watchNoIgnore bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reindex automatically as source files change",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period after the last file event before reindexing (default 500ms)")
	watchCmd.Flags().BoolVar(&watchNoIgnore, "no-ignore", false, "watch files that .gitignore and .cqs.toml would otherwise exclude")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	extensions := append([]string{".go", ".sql", ".md", ".markdown"}, langs.NewRegistry().Extensions()...)

	opts := watcher.Options{
		Debounce: watchDebounce,
		Ignore:   app.Indexer.Discovery.ShouldIgnore,
		NoIgnore: watchNoIgnore,
	}

	fw, err := watcher.NewFileWatcher([]string{app.RootDir}, extensions, opts)
	if err != nil {
		return err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = watcher.DefaultDebounce
	}
	printf("watching %s for changes (debounce %s)\n", app.RootDir, debounce)
	coord := watcher.NewCoordinator(fw, app.Indexer)
	return coord.Start(cmd.Context())
}
