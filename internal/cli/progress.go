package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jamie8johnson/cqs/internal/indexer"
)

// CLIProgress renders indexer.Progress callbacks as progress bars,
// grounded on the teacher's internal/cli/progress.go bar options, adapted
// to the four-callback Progress interface instead of the teacher's nine.
type CLIProgress struct {
	fileBar      *progressbar.ProgressBar
	embeddingBar *progressbar.ProgressBar
	startTime    time.Time
}

// NewCLIProgress creates a progress reporter that prints to stdout via
// the progress bar library's default writer.
func NewCLIProgress() *CLIProgress {
	return &CLIProgress{startTime: time.Now()}
}

func (c *CLIProgress) OnDiscoveryComplete(files int) {
	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetDescription("Indexing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
}

func (c *CLIProgress) OnFileProcessed(origin string, chunks int) {
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgress) OnEmbeddingBatch(processed, total int) {
	if c.embeddingBar == nil {
		c.embeddingBar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Generating embeddings"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("emb/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() { fmt.Println() }),
		)
	}
	c.embeddingBar.Set(processed)
}

func (c *CLIProgress) OnComplete(stats indexer.Stats) {
	fmt.Println()
	fmt.Printf("✓ Indexed %d files: %d chunks written, %d removed (took %.1fs)\n",
		stats.FilesIndexed, stats.ChunksWritten, stats.Removed, time.Since(c.startTime).Seconds())
	if stats.FilesFailed > 0 {
		fmt.Printf("  %d files failed\n", stats.FilesFailed)
	}
}
