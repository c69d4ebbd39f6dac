package refs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamie8johnson/cqs/internal/chunk"
	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/indexer"
	"github.com/jamie8johnson/cqs/internal/langs"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

const defaultWeight = 1.0

// Manager owns the set of references registered under one host data
// directory. Each reference is its own miniature project: a store.Store
// and vectorindex.Store pair rooted at <dataDir>/refs/<name>/, indexed by
// the same indexer.Indexer pipeline used for the primary project.
type Manager struct {
	dataDir  string
	embedder embed.Provider
}

// Open resolves the data directory (env override or ~/.cqs) and returns a
// Manager over it.
func Open(embedder embed.Provider) (*Manager, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "refs.Open", err)
	}
	return &Manager{dataDir: dir, embedder: embedder}, nil
}

// Add validates name and path, indexes path into a fresh store under the
// reference's data directory, and writes its manifest. weight defaults to
// 1.0 when <= 0.
func (m *Manager) Add(ctx context.Context, name, path string, weight float64) (*model.Reference, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, cqserr.New(cqserr.InvalidInput, "refs.Add", fmt.Errorf("reference path %q does not exist or is not a directory", path))
	}
	if weight <= 0 {
		weight = defaultWeight
	}

	storePath := StorePath(m.dataDir, name)
	if _, err := os.Stat(storePath); err == nil {
		return nil, cqserr.New(cqserr.Conflict, "refs.Add", fmt.Errorf("reference %q already exists", name))
	}
	if err := os.MkdirAll(storePath, 0o755); err != nil {
		return nil, cqserr.New(cqserr.Unknown, "refs.Add", err)
	}

	ref := &model.Reference{Name: name, Path: path, Weight: weight, StorePath: storePath, CreatedAt: timeNow()}

	if err := m.reindex(ctx, ref); err != nil {
		os.RemoveAll(storePath)
		return nil, err
	}
	if err := saveManifest(manifestPath(storePath), ref); err != nil {
		os.RemoveAll(storePath)
		return nil, err
	}
	return ref, nil
}

// Update re-reads the manifest for name, re-indexes its path
// incrementally (unchanged files are skipped by the indexer's own
// staleness check), and refreshes weight when newWeight > 0.
func (m *Manager) Update(ctx context.Context, name string, newWeight float64) (*model.Reference, error) {
	ref, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if newWeight > 0 {
		ref.Weight = newWeight
	}
	if err := m.reindex(ctx, ref); err != nil {
		return nil, err
	}
	if err := saveManifest(manifestPath(ref.StorePath), ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// Remove deletes the reference's store directory and manifest entirely.
func (m *Manager) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	storePath := StorePath(m.dataDir, name)
	if _, err := os.Stat(storePath); err != nil {
		return cqserr.New(cqserr.NotFound, "refs.Remove", fmt.Errorf("reference %q not found", name))
	}
	if err := os.RemoveAll(storePath); err != nil {
		return cqserr.New(cqserr.Unknown, "refs.Remove", err)
	}
	return nil
}

// Get loads one reference's manifest by name.
func (m *Manager) Get(name string) (*model.Reference, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return loadManifest(manifestPath(StorePath(m.dataDir, name)))
}

// List returns every registered reference.
func (m *Manager) List() ([]*model.Reference, error) {
	entries, err := os.ReadDir(StorePath(m.dataDir, ""))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "refs.List", err)
	}
	var out []*model.Reference
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ref, err := loadManifest(manifestPath(StorePath(m.dataDir, e.Name())))
		if err != nil {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

// Searcher opens a live searcher over one registered reference's store
// and vector index, implementing retrieval.ReferenceSearcher.
func (m *Manager) Searcher(name string) (*Searcher, error) {
	ref, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath(ref.StorePath))
	if err != nil {
		return nil, err
	}
	vecs, err := vectorindex.Open(ref.StorePath, m.embedder.Dimensions(), m.embedder.Dimensions()+1)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &Searcher{ref: ref, store: st, vectors: vecs}, nil
}

func (m *Manager) reindex(ctx context.Context, ref *model.Reference) error {
	st, err := store.Open(dbPath(ref.StorePath))
	if err != nil {
		return err
	}
	defer st.Close()

	vecs, err := vectorindex.Open(ref.StorePath, m.embedder.Dimensions(), m.embedder.Dimensions()+1)
	if err != nil {
		return err
	}

	dispatcher := chunk.NewDispatcher(langs.NewRegistry())
	disc, err := indexer.NewDiscovery(ref.Path, dispatcher, nil, false)
	if err != nil {
		return err
	}

	ix := &indexer.Indexer{Discovery: disc, Store: st, VectorIndex: vecs, Embedder: m.embedder}
	_, err = ix.Run(ctx, false)
	return err
}

func manifestPath(storeDir string) string { return filepath.Join(storeDir, manifestFile) }
func dbPath(storeDir string) string       { return filepath.Join(storeDir, "index.db") }

func timeNow() time.Time { return time.Now().UTC() }
