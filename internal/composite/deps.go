package composite

import (
	"github.com/jamie8johnson/cqs/internal/graph"
	"github.com/jamie8johnson/cqs/internal/retrieval"
	"github.com/jamie8johnson/cqs/internal/store"
)

// graphHit is the JSON-facing shape of a graph.Hit, used across the
// composite commands that surface callers/callees/impact rows.
type graphHit struct {
	Name    string `json:"name"`
	Origin  string `json:"origin"`
	Line    int    `json:"line"`
	Depth   int    `json:"depth,omitempty"`
	Context string `json:"context,omitempty"`
	Type    string `json:"type,omitempty"`
}

func toGraphHits(hits []graph.Hit) []graphHit {
	out := make([]graphHit, len(hits))
	for i, h := range hits {
		out[i] = graphHit{Name: h.Name, Origin: h.Origin, Line: h.Line, Depth: h.Depth, Context: h.Context, Type: h.ImpactType}
	}
	return out
}

// Deps are the primitives every composite command assembles. One Deps is
// built per project (or per reference, for ref-scoped callers) and handed
// to each command constructor.
type Deps struct {
	RootDir   string
	Store     *store.Store
	Retrieval *retrieval.Engine
	Graph     *graph.Searcher
}

func namesOfHits(hits []retrieval.Hit) []string {
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Chunk != nil && h.Chunk.Name != "" {
			names = append(names, h.Chunk.Name)
		}
	}
	return names
}

func uniq(names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
