// Package retrieval implements C8: hybrid dense+lexical search over the
// chunk store, fused by reciprocal-rank fusion and packed into a token
// budget, grounded on Aman-CERP-amanmcp's internal/search RRF fusion and
// the teacher's internal/mcp exact-name bleve index and graph filter
// idioms.
package retrieval

import "github.com/jamie8johnson/cqs/internal/model"

// Filters narrows the candidate set before fusion ranks are assigned
// (spec.md §4.8 step 6).
type Filters struct {
	Language  string
	PathGlob  string
	Kind      model.ChunkKind
	Tag       string
}

// Weights scales each result list's contribution to the fused RRF score
// (spec.md §4.8 step 4).
type Weights struct {
	Dense      float64
	Lexical    float64
	References map[string]float64 // reference name -> weight
}

// DefaultWeights matches the teacher's RRF defaults: dense and lexical
// lists contribute equally, references add on top of the base query.
func DefaultWeights() Weights {
	return Weights{Dense: 1.0, Lexical: 1.0}
}

// Query describes one search request.
type Query struct {
	Text           string
	NameOnly       bool
	TopK           int // candidate pool size per list, default 50
	TokenBudget    int // 0 disables packing
	Filters        Filters
	IncludeParent  bool // small-to-big expansion
	Weights        Weights
	NoteThreshold  float64 // minimum note similarity (times NoteWeight when non-zero) to attach a note, 0 disables
	NoteWeight     float64
	SuppressNotes  bool // audit mode
}

// Hit is one packed result.
type Hit struct {
	Chunk    *model.Chunk
	Parent   *model.Chunk // non-nil when IncludeParent expanded to a window's owner
	Score    float64
	RRFScore float64
	Source   string // "dense", "lexical", "both", "reference:<name>", "name"
}

// Result is the full response for one query.
type Result struct {
	Hits      []Hit
	Notes     []*model.Note
	Truncated bool // true if the token budget cut off lower-ranked hits
}
