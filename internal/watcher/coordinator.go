package watcher

import (
	"context"
	"log"

	"github.com/jamie8johnson/cqs/internal/indexer"
)

// DefaultDebounce is the quiet period after the last file event before a
// reindex runs (spec.md §6: "default 500ms debounce").
const DefaultDebounce = defaultDebounceTime

// Coordinator routes debounced file-change events from a FileWatcher into
// incremental indexer runs. Unlike the teacher's WatchCoordinator, there is
// no git-branch switch to coordinate: indexing here is always against one
// flat store, so the only job is "changes happened, reindex."
type Coordinator struct {
	files   FileWatcher
	indexer *indexer.Indexer
}

// NewCoordinator wires files to ix.
func NewCoordinator(files FileWatcher, ix *indexer.Indexer) *Coordinator {
	return &Coordinator{files: files, indexer: ix}
}

// Start begins watching and blocks until ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	startErr := make(chan error, 1)
	go func() {
		if err := c.files.Start(ctx, c.handleFileChange); err != nil {
			startErr <- err
		}
	}()

	select {
	case err := <-startErr:
		c.files.Stop()
		return err
	case <-ctx.Done():
		c.files.Stop()
		return ctx.Err()
	}
}

// handleFileChange reindexes in response to a debounced batch of changed
// paths. The indexer's own discovery walk re-derives what actually needs
// reembedding via its mtime/content-hash staleness check, so the changed
// path list itself is only used for the log line, not as a hint the
// indexer trusts blindly.
func (c *Coordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}
	log.Printf("watcher: %d file(s) changed, reindexing", len(files))

	stats, err := c.indexer.Run(context.Background(), false)
	if err != nil {
		log.Printf("watcher: reindex failed: %v", err)
		return
	}
	log.Printf("watcher: reindexed (%d indexed, %d skipped, %d removed)",
		stats.FilesIndexed, stats.FilesSkipped, stats.Removed)
}
