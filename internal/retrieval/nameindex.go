package retrieval

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/model"
)

// NameIndex backs the `--name-only` fast path (spec.md §4.8 step 1) with
// an in-memory bleve index, grounded on the teacher's
// internal/mcp/exact_searcher.go keyword-analyzer mapping. Exact and
// prefix name matches are resolved without touching the vector index or
// FTS5, since bleve's own analyzer already gives free prefix matching
// that SQLite's LIKE does not.
type NameIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

func nameIndexMapping() *mapping.IndexMappingImpl {
	name := bleve.NewTextFieldMapping()
	name.Analyzer = "keyword"
	name.Store = true
	name.Index = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", name)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

// NewNameIndex builds an in-memory name index over chunks.
func NewNameIndex(chunks []*model.Chunk) (*NameIndex, error) {
	idx, err := bleve.NewMemOnly(nameIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("retrieval: create name index: %w", err)
	}
	ni := &NameIndex{index: idx}
	if err := ni.rebuild(chunks); err != nil {
		idx.Close()
		return nil, err
	}
	return ni, nil
}

func (ni *NameIndex) rebuild(chunks []*model.Chunk) error {
	batch := ni.index.NewBatch()
	for _, c := range chunks {
		if c.Name == "" {
			continue
		}
		if err := batch.Index(c.ID, map[string]interface{}{"name": c.Name}); err != nil {
			return fmt.Errorf("retrieval: index chunk %s: %w", c.ID, err)
		}
	}
	return ni.index.Batch(batch)
}

// Upsert indexes or reindexes a single chunk's name, for incremental
// updates after a reindex pass without rebuilding the whole index.
func (ni *NameIndex) Upsert(c *model.Chunk) error {
	if c.Name == "" {
		return nil
	}
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return ni.index.Index(c.ID, map[string]interface{}{"name": c.Name})
}

// Delete removes a chunk from the name index.
func (ni *NameIndex) Delete(chunkID string) error {
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return ni.index.Delete(chunkID)
}

// SearchNames returns chunk IDs matching name exactly or as a prefix,
// exact matches ranked first.
func (ni *NameIndex) SearchNames(name string, limit int) ([]string, error) {
	ni.mu.RLock()
	defer ni.mu.RUnlock()

	exactQ := bleve.NewTermQuery(name)
	exactQ.SetField("name")
	prefixQ := bleve.NewPrefixQuery(name)
	prefixQ.SetField("name")
	q := bleve.NewDisjunctionQuery(exactQ, prefixQ)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	res, err := ni.index.Search(req)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "retrieval.SearchNames", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (ni *NameIndex) Close() error {
	return ni.index.Close()
}
