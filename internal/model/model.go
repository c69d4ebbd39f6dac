// Package model holds the data shapes shared by the store, indexer,
// retrieval and graph packages: chunks, call edges, type edges, notes,
// metadata and references.
package model

import "time"

// ChunkKind enumerates the kinds of named spans the chunker produces.
type ChunkKind string

const (
	KindFunction  ChunkKind = "function"
	KindMethod    ChunkKind = "method"
	KindClass     ChunkKind = "class"
	KindStruct    ChunkKind = "struct"
	KindEnum      ChunkKind = "enum"
	KindTrait     ChunkKind = "trait"
	KindInterface ChunkKind = "interface"
	KindConstant  ChunkKind = "constant"
	KindSection   ChunkKind = "section"
)

// Chunk is a named, line-bounded span of source indexed as a unit.
type Chunk struct {
	ID          string // deterministic: hash(origin, name, start_line, window_idx)
	Origin      string // "file:path/to/file.go" or similar opaque source id
	SourceType  string // "file", "mssql", ... — always "file" for this implementation
	Language    string
	Kind        ChunkKind
	Name        string
	Signature   string
	Text        string
	ContentHash string // blake3 hex digest of Text
	Doc         string // optional leading doc comment
	StartLine   int
	EndLine     int
	Embedding   []float32
	SourceMtime time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ParentID    string // set for windowed children
	WindowIdx   *int   // non-nil and contiguous 0..N across siblings sharing ParentID
}

// EdgeKind enumerates type-edge relationships. The empty string denotes
// a catch-all reference inside a generic parameter list or unresolved context.
type EdgeKind string

const (
	EdgeParam  EdgeKind = "param"
	EdgeReturn EdgeKind = "return"
	EdgeField  EdgeKind = "field"
	EdgeImpl   EdgeKind = "impl"
	EdgeBound  EdgeKind = "bound"
	EdgeAlias  EdgeKind = "alias"
	EdgeOther  EdgeKind = ""
)

// Call is a (caller, callee, line) edge resolved within the caller's file.
// ChunkID is set when the call site falls inside a chunk that was actually
// materialized (i.e. not swallowed by windowing of an oversized function);
// CallerName/Origin/Line are always set and back the denormalized
// file-scoped function_calls table that survives chunking limits.
type Call struct {
	ChunkID    string // may be empty; see function_calls fallback
	CallerName string
	CalleeName string
	Origin     string
	Line       int
}

// TypeEdge is a (source chunk, target type, kind, line) reference.
type TypeEdge struct {
	ChunkID        string
	TargetTypeName string
	Kind           EdgeKind
	Origin         string
	Line           int
}

// Sentiment is the closed set of permitted note valences.
type Sentiment float64

const (
	SentimentStrongNegative Sentiment = -1
	SentimentNegative       Sentiment = -0.5
	SentimentNeutral        Sentiment = 0
	SentimentPositive       Sentiment = 0.5
	SentimentStrongPositive Sentiment = 1
)

// ValidSentiment reports whether s is one of the five permitted values.
func ValidSentiment(s Sentiment) bool {
	switch s {
	case SentimentStrongNegative, SentimentNegative, SentimentNeutral, SentimentPositive, SentimentStrongPositive:
		return true
	default:
		return false
	}
}

// Note is a developer observation, embedded at dimension model_dim+1 with
// sentiment as the last coordinate.
type Note struct {
	ID          string
	Text        string
	Sentiment   Sentiment
	Mentions    []string
	Embedding   []float32 // length == model_dim + 1
	SourcePath  string
	SourceMtime time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reference is a named, read-only snapshot of an external codebase.
type Reference struct {
	Name       string
	Path       string // original source path that was indexed
	Weight     float64
	StorePath  string // path to the reference's own .cqs-shaped store
	CreatedAt  time.Time
}

// Metadata holds the key-value rows governing schema/model identity.
type Metadata struct {
	SchemaVersion      int
	EmbeddingModel     string
	EmbeddingDim       int
	NotesEmbeddingDim  int
	LastReindex        time.Time
	IndexBuildParams   string // opaque JSON blob of build parameters
}
