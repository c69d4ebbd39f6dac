package composite

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jamie8johnson/cqs/internal/chunk"
	"github.com/jamie8johnson/cqs/internal/store"
)

// StatsReport is health's first phase: size and freshness of the index.
type StatsReport struct {
	ChunkCount  int    `json:"chunk_count"`
	OriginCount int    `json:"origin_count"`
	LastReindex string `json:"last_reindex"`
}

// SchemaReport is health's last phase: schema and embedding identity.
type SchemaReport struct {
	SchemaVersion  int    `json:"schema_version"`
	EmbeddingModel string `json:"embedding_model"`
	EmbeddingDim   int    `json:"embedding_dim"`
}

var healthSpecs = []PhaseSpec{
	{Name: "stats", Weight: 0.4},
	{Name: "stale", Weight: 0.4},
	{Name: "schema", Weight: 0.2},
}

// Health runs the `health` composite command.
func Health(ctx context.Context, deps Deps, totalBudget int) Result {
	fns := map[string]PhaseFunc{
		"stats": func(ctx context.Context, budget int) (any, int, error) {
			count, err := deps.Store.ChunkCount()
			if err != nil {
				return nil, 0, err
			}
			origins, err := deps.Store.AllOrigins()
			if err != nil {
				return nil, 0, err
			}
			lastReindex, err := deps.Store.LastReindex()
			if err != nil {
				return nil, 0, err
			}
			report := StatsReport{ChunkCount: count, OriginCount: len(origins), LastReindex: lastReindex.Format("2006-01-02T15:04:05Z07:00")}
			return report, ApproxTokens(report), nil
		},
		"stale": func(ctx context.Context, budget int) (any, int, error) {
			stale, err := staleOrigins(deps.Store, deps.RootDir)
			if err != nil {
				return nil, 0, err
			}
			return stale, ApproxTokens(stale), nil
		},
		"schema": func(ctx context.Context, budget int) (any, int, error) {
			identity, err := deps.Store.EmbeddingIdentity()
			if err != nil {
				return nil, 0, err
			}
			report := SchemaReport{SchemaVersion: store.CurrentSchemaVersion, EmbeddingModel: identity.Model, EmbeddingDim: identity.Dim}
			return report, ApproxTokens(report), nil
		},
	}

	return Run(ctx, "health", totalBudget, healthSpecs, fns)
}

// staleOrigins returns every origin whose on-disk file no longer matches
// the mtime/content-hash recorded at last index time (the same staleness
// check the indexer's own skip-unchanged path uses).
func staleOrigins(st *store.Store, rootDir string) ([]string, error) {
	origins, err := st.AllOrigins()
	if err != nil {
		return nil, err
	}
	var stale []string
	for _, origin := range origins {
		relPath := origin
		if len(origin) > 5 && origin[:5] == "file:" {
			relPath = origin[5:]
		}
		info, statErr := os.Stat(filepath.Join(rootDir, relPath))
		if statErr != nil {
			stale = append(stale, origin) // file removed since indexing
			continue
		}
		state, ok, err := st.OriginState(origin)
		if err != nil {
			return nil, err
		}
		if !ok {
			stale = append(stale, origin)
			continue
		}
		if info.ModTime().Equal(state.SourceMtime) {
			continue
		}
		source, readErr := os.ReadFile(filepath.Join(rootDir, relPath))
		if readErr == nil && chunk.ContentHash(source) == state.ContentHash {
			continue
		}
		stale = append(stale, origin)
	}
	return stale, nil
}
