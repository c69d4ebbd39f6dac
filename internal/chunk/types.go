// Package chunk implements C2 Parser/Chunker: turning a file's contents
// into named chunks plus the call and type edges that back the graph
// services. The tree-sitter walking idiom (node-kind dispatch, field
// lookups, recursive descent) is carried over from the teacher's
// internal/indexer/parsers package; the call/type edge extraction that
// walk now performs is new — the teacher's parsers never emitted edges.
package chunk

import (
	"time"

	"github.com/jamie8johnson/cqs/internal/model"
)

// WindowLines and WindowStride implement spec.md §4.2's windowing rule:
// a chunk spanning more than WindowThreshold lines is split into
// overlapping windows of approximately WindowLines with stride
// WindowStride, each a chunk whose ParentID points to the logical parent.
const (
	WindowThreshold = 100
	WindowLines     = 60
	WindowStride    = 40
)

// Result is the output of chunking one file.
type Result struct {
	Chunks []*model.Chunk
	Calls  []*model.Call
	Types  []*model.TypeEdge
}

// Chunker produces a Result from a file's raw contents. Implementations
// must degrade gracefully on parse failure: emit a single whole-file
// chunk named by filename rather than erroring the indexing pass (spec.md
// §4.2 "Failures ... degrade gracefully").
type Chunker interface {
	Chunk(origin string, language string, source []byte, mtime time.Time) (*Result, error)
}

// wholeFileFallback builds the single-chunk degraded result used by every
// Chunker when its grammar fails to load or parse.
func wholeFileFallback(origin, language string, source []byte, mtime time.Time, name string) *Result {
	lines := countLines(source)
	now := time.Now()
	c := &model.Chunk{
		ID:          ChunkID(origin, name, 1, nil),
		Origin:      origin,
		SourceType:  "file",
		Language:    language,
		Kind:        model.KindSection,
		Name:        name,
		Signature:   name,
		Text:        string(source),
		ContentHash: ContentHash(source),
		StartLine:   1,
		EndLine:     lines,
		SourceMtime: mtime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return &Result{Chunks: []*model.Chunk{c}}
}

func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	return n
}
