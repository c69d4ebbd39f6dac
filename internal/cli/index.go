package cli

import (
	"github.com/spf13/cobra"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Parse, embed, and persist every indexable file in the project",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "re-chunk and re-embed every file, ignoring content hashes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	app, err := OpenApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.Indexer.Run(cmd.Context(), indexForce)
	if err != nil {
		return err
	}

	return printResult(stats, func() {
		printf("indexed %d files: %d chunks written, %d removed\n",
			stats.FilesIndexed, stats.ChunksWritten, stats.Removed)
		if stats.FilesFailed > 0 {
			printf("%d files failed\n", stats.FilesFailed)
		}
	})
}
