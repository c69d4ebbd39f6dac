package retrieval

import (
	"context"
	"sort"

	"github.com/gobwas/glob"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

const defaultTopK = 50

// ReferenceSearcher is a secondary, independently-indexed code corpus
// registered via `ref add` (C12) whose own hits feed into RRF fusion as a
// weighted list.
type ReferenceSearcher interface {
	Name() string
	SearchDense(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error)
}

// Engine runs hybrid search over one project's index.
type Engine struct {
	Store      *store.Store
	Vectors    *vectorindex.Store
	NameIndex  *NameIndex
	Embedder   embed.Provider
	References []ReferenceSearcher
}

// Search executes the full pipeline described in spec.md §4.8.
func (e *Engine) Search(ctx context.Context, q Query) (Result, error) {
	if q.NameOnly {
		return e.searchByName(q)
	}

	topK := q.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	queryVecs, err := e.Embedder.Embed(ctx, []string{embed.Truncate(q.Text)}, embed.EmbedModeQuery)
	if err != nil {
		return Result{}, cqserr.New(cqserr.Unknown, "retrieval.Search", err)
	}
	queryVec := queryVecs[0]

	lists := []rankedList{}

	denseResults, err := e.Vectors.Chunks.Search(queryVec, topK)
	if err != nil {
		return Result{}, cqserr.New(cqserr.Unknown, "retrieval.Search", err)
	}
	denseWeight := q.Weights.Dense
	if denseWeight == 0 {
		denseWeight = DefaultWeights().Dense
	}
	lists = append(lists, rankedList{name: "dense", weight: denseWeight, ids: idsOf(denseResults)})

	lexHits, err := e.Store.SearchLexical(q.Text, topK)
	if err != nil {
		return Result{}, cqserr.New(cqserr.Unknown, "retrieval.Search", err)
	}
	lexWeight := q.Weights.Lexical
	if lexWeight == 0 {
		lexWeight = DefaultWeights().Lexical
	}
	lexIDs := make([]string, len(lexHits))
	for i, h := range lexHits {
		lexIDs[i] = h.ChunkID
	}
	lists = append(lists, rankedList{name: "lexical", weight: lexWeight, ids: lexIDs})

	for _, ref := range e.References {
		w := q.Weights.References[ref.Name()]
		if w == 0 {
			continue
		}
		refResults, err := ref.SearchDense(ctx, queryVec, topK)
		if err != nil {
			continue // a broken reference store degrades search, it does not fail it
		}
		lists = append(lists, rankedList{name: "reference:" + ref.Name(), weight: w, ids: idsOf(refResults)})
	}

	fusedResults := fuse(lists, DefaultRRFConstant)

	hits := make([]Hit, 0, len(fusedResults))
	for _, f := range fusedResults {
		c, err := e.Store.ChunkByID(f.id)
		if err != nil {
			continue // a note id or a reference-only id with no local chunk
		}
		if !matchesFilters(c, q.Filters) {
			continue
		}
		hit := Hit{Chunk: c, Score: f.score, RRFScore: f.score, Source: sourceLabel(f.sources)}
		if q.IncludeParent && c.ParentID != "" {
			if parent, err := e.Store.ChunkByID(c.ParentID); err == nil {
				hit.Parent = parent
			}
		}
		hits = append(hits, hit)
	}

	result := Result{}
	if q.TokenBudget > 0 {
		result.Hits, result.Truncated = packToBudget(hits, q.TokenBudget)
	} else {
		result.Hits = hits
	}

	if !q.SuppressNotes && q.NoteThreshold > 0 {
		result.Notes = e.attachNotes(result.Hits, q.NoteThreshold, q.NoteWeight)
	}

	return result, nil
}

func (e *Engine) searchByName(q Query) (Result, error) {
	limit := q.TopK
	if limit <= 0 {
		limit = defaultTopK
	}
	ids, err := e.NameIndex.SearchNames(q.Text, limit)
	if err != nil {
		return Result{}, err
	}
	hits := make([]Hit, 0, len(ids))
	for i, id := range ids {
		c, err := e.Store.ChunkByID(id)
		if err != nil {
			continue
		}
		if !matchesFilters(c, q.Filters) {
			continue
		}
		hits = append(hits, Hit{Chunk: c, Score: 1.0 / float64(i+1), Source: "name"})
	}
	return Result{Hits: hits}, nil
}

// attachNotes finds notes whose embedding is close to the centroid of the
// returned hits, above threshold, weighted by note-weight (spec.md §4.8
// step 9). Audit mode (SuppressNotes) bypasses this entirely.
func (e *Engine) attachNotes(hits []Hit, threshold, weight float64) []*model.Note {
	if len(hits) == 0 {
		return nil
	}
	dim := e.Vectors.Notes.Dimensions()
	centroid := make([]float32, dim)
	count := 0
	for _, h := range hits {
		if len(h.Chunk.Embedding) == 0 {
			continue
		}
		for i := 0; i < dim && i < len(h.Chunk.Embedding); i++ {
			centroid[i] += h.Chunk.Embedding[i]
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range centroid {
		centroid[i] /= float32(count)
	}

	results, err := e.Vectors.Notes.Search(centroid, 10)
	if err != nil {
		return nil
	}
	var notes []*model.Note
	for _, r := range results {
		score := float64(r.Score) * weight
		if weight == 0 {
			score = float64(r.Score)
		}
		if score < threshold {
			continue
		}
		n, err := e.Store.NoteByID(r.ID)
		if err != nil {
			continue
		}
		notes = append(notes, n)
	}
	return notes
}

func idsOf(results []vectorindex.Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func matchesFilters(c *model.Chunk, f Filters) bool {
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if f.Kind != "" && c.Kind != f.Kind {
		return false
	}
	if f.PathGlob != "" {
		g, err := glob.Compile(f.PathGlob, '/')
		if err != nil || !g.Match(c.Origin) {
			return false
		}
	}
	// Tag filtering has no chunk-level field yet; reserved for
	// pattern-tag metadata sourced from .cqs.toml (C10/notes mentions).
	return true
}

// approxTokens estimates token count the way a coarse packer needs to:
// cheaply, not precisely. 4 bytes/token is the common rule of thumb for
// English-dominant source text.
func approxTokens(s string) int {
	n := len(s) / 4
	if n == 0 && len(s) > 0 {
		n = 1
	}
	return n
}

// packToBudget greedily keeps hits in score order until the next one
// would overflow the token budget (spec.md §4.8 step 8), skipping (not
// stopping at) an oversized item so a big low-value hit can't block a
// smaller one ranked just below it.
func packToBudget(hits []Hit, budget int) ([]Hit, bool) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	var packed []Hit
	used := 0
	truncated := false
	for _, h := range hits {
		cost := approxTokens(h.Chunk.Text)
		if h.Parent != nil {
			cost += approxTokens(h.Parent.Text)
		}
		if used+cost > budget {
			truncated = true
			continue
		}
		packed = append(packed, h)
		used += cost
	}
	return packed, truncated
}
