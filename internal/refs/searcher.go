package refs

import (
	"context"

	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

// Searcher adapts one registered reference's store and vector index to
// retrieval.ReferenceSearcher, so its hits feed into RRF fusion as their
// own weighted list (spec.md §4.8, §4.12).
type Searcher struct {
	ref     *model.Reference
	store   *store.Store
	vectors *vectorindex.Store
}

// Name returns the registered reference name, used as the RRF list label.
func (s *Searcher) Name() string { return s.ref.Name }

// Weight returns the configured fusion weight for this reference.
func (s *Searcher) Weight() float64 { return s.ref.Weight }

// SearchDense runs a dense search against the reference's own chunk
// vector namespace.
func (s *Searcher) SearchDense(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error) {
	return s.vectors.Chunks.Search(queryVec, k)
}

// ChunkByID resolves one of this reference's own chunk ids, used when a
// caller wants to display the reference chunk a hit came from rather than
// treating it purely as a ranking signal.
func (s *Searcher) ChunkByID(id string) (*model.Chunk, error) {
	return s.store.ChunkByID(id)
}

// Close releases the reference's store handle. The vector index has no
// open resources beyond memory.
func (s *Searcher) Close() error {
	return s.store.Close()
}
