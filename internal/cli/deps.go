package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamie8johnson/cqs/internal/chunk"
	"github.com/jamie8johnson/cqs/internal/config"
	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/graph"
	"github.com/jamie8johnson/cqs/internal/indexer"
	"github.com/jamie8johnson/cqs/internal/langs"
	"github.com/jamie8johnson/cqs/internal/notes"
	"github.com/jamie8johnson/cqs/internal/refs"
	"github.com/jamie8johnson/cqs/internal/retrieval"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

// dataDirName is the project-local persistent-state directory (spec.md
// §6c): `./.cqs/index.db` plus the vector indexes `./.cqs/chunks.hnsw`
// and `./.cqs/notes.hnsw`.
const dataDirName = ".cqs"

// App bundles every long-lived handle a command needs, opened once per
// invocation and closed on exit — mirrors the teacher's runIndex wiring
// of cache settings + db + embed provider into one call, generalized
// into a reusable struct instead of re-threading the same five opens
// through every command function.
type App struct {
	RootDir   string
	Config    *config.Config
	Store     *store.Store
	Vectors   *vectorindex.Store
	Embedder  embed.Provider
	Notes     *notes.Manager
	Retrieval *retrieval.Engine
	Graph     *graph.Searcher
	Indexer   *indexer.Indexer
	Refs      *refs.Manager

	refSearchers []*refs.Searcher
}

// OpenApp resolves the project root, loads .cqs.toml, and opens the
// store/vector-index/embedder/notes/graph/retrieval stack against
// ./.cqs/. Call Close when done.
func OpenApp(ctx context.Context) (*App, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cqs: failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cqs: failed to load .cqs.toml: %w", err)
	}

	dataDir := filepath.Join(rootDir, dataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cqs: failed to create %s: %w", dataDirName, err)
	}

	st, err := store.Open(filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, err
	}

	embedder, err := embed.NewProvider(ctx, cfg.ToEmbedConfig())
	if err != nil {
		st.Close()
		return nil, err
	}

	vecs, err := vectorindex.Open(dataDir, embedder.Dimensions(), embedder.Dimensions()+1)
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	notesMgr, err := notes.Open(filepath.Join(rootDir, "docs", "notes.toml"), st, vecs, embed.NewNoteProvider(embedder))
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	ni, err := buildNameIndex(st)
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	refMgr, err := refs.Open(embedder)
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	refSearchers, err := openConfiguredReferences(cfg, refMgr)
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	engine := &retrieval.Engine{
		Store:     st,
		Vectors:   vecs,
		NameIndex: ni,
		Embedder:  embedder,
	}
	for _, s := range refSearchers {
		engine.References = append(engine.References, s)
	}

	gs, err := graph.New(st, rootDir)
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	dispatcher := chunk.NewDispatcher(langs.NewRegistry())
	discovery, err := indexer.NewDiscovery(rootDir, dispatcher, cfg.IgnoreOverrides(), false)
	if err != nil {
		st.Close()
		embedder.Close()
		return nil, err
	}

	ix := &indexer.Indexer{
		Discovery:   discovery,
		Store:       st,
		VectorIndex: vecs,
		Embedder:    embedder,
	}
	if !quiet {
		ix.Progress = NewCLIProgress()
	}

	return &App{
		RootDir:      rootDir,
		Config:       cfg,
		Store:        st,
		Vectors:      vecs,
		Embedder:     embedder,
		Notes:        notesMgr,
		Retrieval:    engine,
		Graph:        gs,
		Indexer:      ix,
		Refs:         refMgr,
		refSearchers: refSearchers,
	}, nil
}

// DefaultWeights returns the project-configured RRF weights, falling
// back to retrieval.DefaultWeights() for any zero field.
func (a *App) DefaultWeights() retrieval.Weights {
	w := retrieval.DefaultWeights()
	if a.Config.Weights.Dense != 0 {
		w.Dense = a.Config.Weights.Dense
	}
	if a.Config.Weights.Lexical != 0 {
		w.Lexical = a.Config.Weights.Lexical
	}
	w.References = a.Config.Weights.References
	return w
}

// Close releases every handle opened by OpenApp.
func (a *App) Close() {
	for _, s := range a.refSearchers {
		s.Close()
	}
	if a.Embedder != nil {
		a.Embedder.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}

func buildNameIndex(st *store.Store) (*retrieval.NameIndex, error) {
	chunks, err := st.AllChunks()
	if err != nil {
		return nil, err
	}
	return retrieval.NewNameIndex(chunks)
}

// openConfiguredReferences opens a refs.Searcher for every reference
// registered in .cqs.toml, so RRF fusion can mix them in without the
// caller having to know which names exist.
func openConfiguredReferences(cfg *config.Config, mgr *refs.Manager) ([]*refs.Searcher, error) {
	var searchers []*refs.Searcher
	for _, rc := range cfg.References {
		s, err := mgr.Searcher(rc.Name)
		if err != nil {
			continue // registered in config but not yet `ref add`-ed; skip rather than fail the whole app
		}
		searchers = append(searchers, s)
	}
	return searchers, nil
}
