// Package vectorindex implements C6: an approximate nearest-neighbor index
// over chunk and note embeddings, persistent and rebuildable. Grounded on
// Aman-CERP-amanmcp's internal/store/hnsw.go — same coder/hnsw graph,
// lazy-deletion idiom (orphaned nodes outlive Delete rather than being
// removed from the graph, which coder/hnsw does not support safely), gob
// metadata sidecar, atomic temp-file-then-rename persistence.
package vectorindex

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

// Result is one ranked neighbor.
type Result struct {
	ID       string
	Distance float32
	Score    float32 // 1 - distance/2, cosine similarity rescaled to [0,1]
}

// Index wraps one coder/hnsw graph over vectors of a fixed dimension. A
// project keeps two Index values: one for code-chunk embeddings (D) and
// one for note embeddings (D+1), per spec.md §9's resolution to use a
// separate namespace rather than zero-pad code vectors up to D+1.
type Index struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	dimensions int

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

type persistedMeta struct {
	IDMap      map[string]uint64
	NextKey    uint64
	Dimensions int
}

// New creates an empty cosine-distance HNSW index at the given dimension.
func New(dimensions int) *Index {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25
	return &Index{
		graph:      graph,
		dimensions: dimensions,
		idMap:      map[string]uint64{},
		keyMap:     map[uint64]string{},
	}
}

func (ix *Index) Dimensions() int { return ix.dimensions }

// Upsert inserts or replaces id's vector. Replacement is lazy: the old
// graph node is orphaned (dropped from the id/key maps, left in the
// graph) rather than deleted, mirroring the teacher's workaround for
// coder/hnsw's unsafe last-node deletion.
func (ix *Index) Upsert(id string, vec []float32) error {
	if len(vec) != ix.dimensions {
		return cqserr.New(cqserr.InvalidInput, "vectorindex.Upsert",
			fmt.Errorf("vector has dimension %d, index expects %d", len(vec), ix.dimensions))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if existing, ok := ix.idMap[id]; ok {
		delete(ix.keyMap, existing)
		delete(ix.idMap, id)
	}

	normalized := make([]float32, len(vec))
	copy(normalized, vec)
	normalizeInPlace(normalized)

	key := ix.nextKey
	ix.nextKey++
	ix.graph.Add(hnsw.MakeNode(key, normalized))
	ix.idMap[id] = key
	ix.keyMap[key] = id
	return nil
}

// Delete orphans id's node, same lazy-deletion approach as Upsert.
func (ix *Index) Delete(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if key, ok := ix.idMap[id]; ok {
		delete(ix.keyMap, key)
		delete(ix.idMap, id)
	}
}

// Search returns the k nearest neighbors to query.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != ix.dimensions {
		return nil, cqserr.New(cqserr.InvalidInput, "vectorindex.Search",
			fmt.Errorf("query has dimension %d, index expects %d", len(query), ix.dimensions))
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph.Len() == 0 {
		return nil, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeInPlace(normalized)

	nodes := ix.graph.Search(normalized, k)
	out := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		id, ok := ix.keyMap[node.Key]
		if !ok {
			continue // orphaned node from a lazy delete
		}
		dist := ix.graph.Distance(normalized, node.Value)
		out = append(out, Result{ID: id, Distance: dist, Score: 1 - dist/2})
	}
	return out, nil
}

func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.idMap)
}

// Save persists the graph to indexPath and its id mappings to
// indexPath+".meta", both via temp-file-then-rename.
func (ix *Index) Save(indexPath string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return cqserr.New(cqserr.Unknown, "vectorindex.Save", err)
	}

	tmp := indexPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "vectorindex.Save", err)
	}
	if err := ix.graph.Export(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return cqserr.New(cqserr.Unknown, "vectorindex.Save", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return cqserr.New(cqserr.Unknown, "vectorindex.Save", err)
	}
	if err := os.Rename(tmp, indexPath); err != nil {
		os.Remove(tmp)
		return cqserr.New(cqserr.Unknown, "vectorindex.Save", err)
	}

	return ix.saveMeta(indexPath + ".meta")
}

func (ix *Index) saveMeta(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "vectorindex.saveMeta", err)
	}
	meta := persistedMeta{IDMap: ix.idMap, NextKey: ix.nextKey, Dimensions: ix.dimensions}
	if err := gob.NewEncoder(f).Encode(meta); err != nil {
		f.Close()
		os.Remove(tmp)
		return cqserr.New(cqserr.Unknown, "vectorindex.saveMeta", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return cqserr.New(cqserr.Unknown, "vectorindex.saveMeta", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return cqserr.New(cqserr.Unknown, "vectorindex.saveMeta", err)
	}
	return nil
}

// Load builds an index from what's persisted at indexPath, taking its
// dimension from the saved metadata. It does not compare that dimension
// with any expected value.
func Load(indexPath string) (*Index, error) {
	meta, err := loadMeta(indexPath + ".meta")
	if err != nil {
		return nil, err
	}

	ix := New(meta.Dimensions)
	ix.idMap = meta.IDMap
	ix.nextKey = meta.NextKey
	ix.keyMap = make(map[uint64]string, len(meta.IDMap))
	for id, key := range meta.IDMap {
		ix.keyMap[key] = id
	}

	f, err := os.Open(indexPath)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "vectorindex.Load", err)
	}
	defer f.Close()

	if err := ix.graph.Import(bufio.NewReader(f)); err != nil {
		return nil, cqserr.New(cqserr.Unknown, "vectorindex.Load", err)
	}
	return ix, nil
}

func loadMeta(path string) (persistedMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return persistedMeta{}, cqserr.New(cqserr.Unknown, "vectorindex.loadMeta", err)
	}
	defer f.Close()
	var meta persistedMeta
	if err := gob.NewDecoder(f).Decode(&meta); err != nil {
		return persistedMeta{}, cqserr.New(cqserr.Unknown, "vectorindex.loadMeta", err)
	}
	return meta, nil
}

// Exists reports whether a persisted index is present at indexPath, so
// callers can distinguish "fresh start" from "load failure".
func Exists(indexPath string) bool {
	_, err := os.Stat(indexPath + ".meta")
	return err == nil
}

func normalizeInPlace(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSq))
	for i := range v {
		v[i] *= inv
	}
}
