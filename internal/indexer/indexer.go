package indexer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jamie8johnson/cqs/internal/chunk"
	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

// EmbedBatchSize groups chunks into batches before an embedder call,
// matching the teacher's batched.go default of processing in slices
// sized for sub-second progress updates rather than one call per chunk.
const EmbedBatchSize = 50

// Indexer orchestrates one project's parse -> embed -> write -> vector-
// insert pipeline (spec.md §4.7), holding the long-lived store, vector
// index and embedder handles the way the teacher's runIndex wires
// FileDiscovery + embed.Provider + storage together.
type Indexer struct {
	Discovery   *Discovery
	Store       *store.Store
	VectorIndex *vectorindex.Store
	Embedder    embed.Provider
	Progress    Progress
}

// Run walks the project, re-chunks and re-embeds every file whose
// content has changed since the last index, GCs origins whose source
// file is gone, and persists both the store and the vector index.
// `force` bypasses the hash check and re-embeds everything (spec.md
// §4.7's `index --force`).
func (ix *Indexer) Run(ctx context.Context, force bool) (Stats, error) {
	var stats Stats
	progress := ix.Progress
	if progress == nil {
		progress = NoOpProgress{}
	}

	if err := ix.Store.CheckEmbeddingIdentity(ix.Embedder.ModelID(), ix.Embedder.Dimensions()); err != nil {
		return stats, err
	}

	files, err := ix.Discovery.Walk()
	if err != nil {
		return stats, cqserr.New(cqserr.Unknown, "indexer.Run", err)
	}
	stats.FilesSeen = len(files)
	progress.OnDiscoveryComplete(len(files))

	seenOrigins := map[string]bool{}
	atLeastOneSucceeded := false

	for _, f := range files {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		seenOrigins[f.Origin] = true
		n, embedCalls, err := ix.indexFile(ctx, f, force)
		if err != nil {
			stats.FilesFailed++
			continue
		}
		if n < 0 {
			stats.FilesSkipped++
			continue
		}
		atLeastOneSucceeded = true
		stats.FilesIndexed++
		stats.ChunksWritten += n
		stats.EmbedCalls += embedCalls
		progress.OnFileProcessed(f.Origin, n)
	}

	removed, err := ix.gc(seenOrigins)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed

	if err := ix.VectorIndex.Save(); err != nil {
		return stats, cqserr.New(cqserr.Unknown, "indexer.Run", err)
	}
	if err := ix.Store.SetEmbeddingIdentity(ix.Embedder.ModelID(), ix.Embedder.Dimensions()); err != nil {
		return stats, err
	}
	if err := ix.Store.SetNotesEmbeddingDim(ix.Embedder.Dimensions() + 1); err != nil {
		return stats, err
	}
	if err := ix.Store.SetLastReindex(time.Now()); err != nil {
		return stats, err
	}

	progress.OnComplete(stats)

	if len(files) > 0 && !atLeastOneSucceeded && stats.FilesSkipped == 0 {
		return stats, cqserr.New(cqserr.Unknown, "indexer.Run", fmt.Errorf("every file failed to index"))
	}
	return stats, nil
}

// indexFile returns the number of chunks written, or -1 if the file was
// skipped because it was unchanged (staleness check, spec.md §4.7:
// "(origin, source_mtime, content_hash)").
func (ix *Indexer) indexFile(ctx context.Context, f File, force bool) (int, int, error) {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0, 0, err
	}

	if !force {
		prior, ok, err := ix.Store.OriginState(f.Origin)
		if err != nil {
			return 0, 0, err
		}
		if ok && prior.SourceMtime.Equal(info.ModTime()) {
			return -1, 0, nil
		}
		contentHash := chunk.ContentHash(source)
		if ok && prior.ContentHash == contentHash {
			return -1, 0, nil
		}
	}
	contentHash := chunk.ContentHash(source)

	result, err := f.Chunker.Chunk(f.Origin, f.Language, source, info.ModTime())
	if err != nil {
		return 0, 0, cqserr.New(cqserr.ParseError, "indexer.indexFile", err)
	}

	embedCalls, err := ix.embedChunks(ctx, result.Chunks)
	if err != nil {
		return 0, embedCalls, err
	}

	if err := ix.Store.WriteFile(f.Origin, contentHash, info.ModTime(), result.Chunks, result.Calls, result.Types); err != nil {
		return 0, embedCalls, err
	}

	for _, c := range result.Chunks {
		if err := ix.VectorIndex.Chunks.Upsert(c.ID, c.Embedding); err != nil {
			return 0, embedCalls, cqserr.New(cqserr.Unknown, "indexer.indexFile", err)
		}
	}

	return len(result.Chunks), embedCalls, nil
}

// embedChunks embeds every chunk's text in batches of EmbedBatchSize,
// writing the resulting vector directly onto each chunk, and returns the
// number of embedder calls made (so `stats` can confirm the "touching
// mtime without changing content causes zero re-embeddings" property by
// counting invocations, per spec.md §8 property 6).
func (ix *Indexer) embedChunks(ctx context.Context, chunks []*model.Chunk) (int, error) {
	calls := 0
	for start := 0; start < len(chunks); start += EmbedBatchSize {
		end := start + EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = embed.Truncate(c.Text)
		}

		vecs, err := ix.Embedder.Embed(ctx, texts, embed.EmbedModePassage)
		if err != nil {
			return calls, cqserr.New(cqserr.Unknown, "indexer.embedChunks", err)
		}
		calls++
		for i, v := range vecs {
			batch[i].Embedding = v
		}
	}
	return calls, nil
}

// gc removes every origin no longer present on disk, along with its
// chunks and their vectors from the vector index.
func (ix *Indexer) gc(seen map[string]bool) (int, error) {
	all, err := ix.Store.AllOrigins()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, origin := range all {
		if seen[origin] {
			continue
		}
		chunks, err := ix.Store.ChunksByOrigin(origin)
		if err != nil {
			return removed, err
		}
		for _, c := range chunks {
			ix.VectorIndex.Chunks.Delete(c.ID)
		}
		if err := ix.Store.DeleteOrigin(origin); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
