package graph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
)

// Searcher answers the C9 graph queries over one project's store.
type Searcher struct {
	store    *store.Store
	snippets *snippetCache
}

// New builds a Searcher. rootDir is the project root, used to resolve
// origins back to files for context-snippet extraction.
func New(st *store.Store, rootDir string) (*Searcher, error) {
	sc, err := newSnippetCache(rootDir)
	if err != nil {
		return nil, err
	}
	return &Searcher{store: st, snippets: sc}, nil
}

// Callers returns every call site recorded against name as the callee.
func (s *Searcher) Callers(name string) ([]Hit, error) {
	calls, err := s.store.CallersOf(name)
	if err != nil {
		return nil, err
	}
	return hitsFromCalls(calls, func(c model.Call) string { return c.CallerName }), nil
}

// Callees returns every call site recorded against name as the caller.
func (s *Searcher) Callees(name string) ([]Hit, error) {
	calls, err := s.store.CalleesOf(name)
	if err != nil {
		return nil, err
	}
	return hitsFromCalls(calls, func(c model.Call) string { return c.CalleeName }), nil
}

func hitsFromCalls(calls []model.Call, name func(model.Call) string) []Hit {
	hits := make([]Hit, len(calls))
	for i, c := range calls {
		hits[i] = Hit{Name: name(c), Origin: c.Origin, Line: c.Line}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Origin != hits[j].Origin {
			return hits[i].Origin < hits[j].Origin
		}
		return hits[i].Line < hits[j].Line
	})
	return hits
}

// Trace runs a BFS from src through callees, bounded by maxDepth,
// recording every edge it visits into a dominikbraun/graph instance (the
// same library the teacher's searcher.go used for ShortestPath), then
// resolves the first path found via graph.ShortestPath. Ties broken by
// file then line: callees are visited in that order, so BFS discovers
// the tie-winning edge first and later duplicate edges never overwrite it.
func (s *Searcher) Trace(src, tgt string, maxDepth int) (TracePath, error) {
	if maxDepth <= 0 || maxDepth > DefaultMaxDepth {
		maxDepth = DefaultMaxDepth
	}
	if src == tgt {
		return TracePath{Found: true, Path: []Hit{{Name: src}}}, nil
	}

	g := graph.New(graph.StringHash, graph.Directed())
	_ = g.AddVertex(src)
	edgeInfo := map[[2]string]model.Call{}

	visited := map[string]bool{src: true}
	frontier := []string{src}
	found := false

	for depth := 0; depth < maxDepth && len(frontier) > 0 && !found; depth++ {
		var next []string
		for _, name := range frontier {
			callees, err := s.store.CalleesOf(name)
			if err != nil {
				return TracePath{}, err
			}
			sort.Slice(callees, func(i, j int) bool {
				if callees[i].Origin != callees[j].Origin {
					return callees[i].Origin < callees[j].Origin
				}
				return callees[i].Line < callees[j].Line
			})
			for _, c := range callees {
				if _, exists := edgeInfo[[2]string{name, c.CalleeName}]; exists {
					continue
				}
				_ = g.AddVertex(c.CalleeName)
				_ = g.AddEdge(name, c.CalleeName)
				edgeInfo[[2]string{name, c.CalleeName}] = c
				if !visited[c.CalleeName] {
					visited[c.CalleeName] = true
					next = append(next, c.CalleeName)
				}
				if c.CalleeName == tgt {
					found = true
				}
			}
		}
		frontier = next
	}
	if !found {
		return TracePath{Found: false}, nil
	}

	names, err := graph.ShortestPath(g, src, tgt)
	if err != nil {
		return TracePath{}, err
	}
	hits := make([]Hit, len(names))
	for i, n := range names {
		hit := Hit{Name: n, Depth: i}
		if i > 0 {
			if c, ok := edgeInfo[[2]string{names[i-1], n}]; ok {
				hit.Origin = c.Origin
				hit.Line = c.Line
			}
		}
		hits[i] = hit
	}
	return TracePath{Found: true, Path: hits}, nil
}

// Impact runs a reverse BFS from name up callers to depth (depth <= 0 or
// above DefaultMaxDepth uses DefaultMaxDepth), classifying each caller by
// name as "test" or "other"; no caller is classified as a modify target.
// Each hit carries the call line ±contextLines (default
// DefaultContextLines) as a snippet.
func (s *Searcher) Impact(name string, depth, contextLines int) ([]Hit, error) {
	if depth <= 0 || depth > DefaultMaxDepth {
		depth = DefaultMaxDepth
	}
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}

	visited := map[string]bool{name: true}
	frontier := []string{name}
	var results []Hit

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, n := range frontier {
			callers, err := s.store.CallersOf(n)
			if err != nil {
				return nil, err
			}
			for _, c := range callers {
				if visited[c.CallerName] {
					continue
				}
				visited[c.CallerName] = true
				next = append(next, c.CallerName)

				hit := Hit{Name: c.CallerName, Origin: c.Origin, Line: c.Line, Depth: d}
				hit.ImpactType = classifyImpact(c.CallerName)
				if snippet, err := s.snippets.extract(c.Origin, c.Line, contextLines); err == nil {
					hit.Context = snippet
				}
				results = append(results, hit)
			}
		}
		frontier = next
	}
	return results, nil
}

var testNamePattern = regexp.MustCompile(`(?i)^test_|_test$|^Test[A-Z]`)

func classifyImpact(name string) string {
	if testNamePattern.MatchString(name) {
		return "test"
	}
	return "other"
}

// TestMap is an impact-style reverse BFS restricted to chunks whose name
// matches test heuristics.
func (s *Searcher) TestMap(name string, depth int) ([]Hit, error) {
	hits, err := s.Impact(name, depth, 0)
	if err != nil {
		return nil, err
	}
	var tests []Hit
	for _, h := range hits {
		if testNamePattern.MatchString(h.Name) {
			tests = append(tests, h)
		}
	}
	return tests, nil
}

var entryPointNames = map[string]bool{"main": true, "init": true}

// isPublicAPI applies the teacher's "uppercase-exported-name" Go
// convention as the visibility hint; other languages rely on their
// chunker having recorded an exported-looking signature keyword.
func isPublicAPI(c *model.Chunk) bool {
	if c.Name == "" {
		return false
	}
	if c.Language == "go" {
		return c.Name[0] >= 'A' && c.Name[0] <= 'Z'
	}
	sig := strings.ToLower(c.Signature)
	return strings.Contains(sig, "pub ") || strings.Contains(sig, "export ") || strings.Contains(sig, "public ")
}

// Dead returns chunks with zero callers, tiered by confidence (spec.md
// §4.9 dead). High confidence excludes main/init, test functions, public
// API, and trait/interface implementations (which may only be invoked
// through dynamic dispatch the call graph can't see); medium excludes
// only entry points; low includes everything.
func (s *Searcher) Dead(minConfidence Confidence) ([]DeadChunk, error) {
	chunks, err := s.store.AllChunks()
	if err != nil {
		return nil, err
	}
	_, callees, err := s.store.AllCallNames()
	if err != nil {
		return nil, err
	}
	implementors, err := s.store.ImplementorChunkIDs()
	if err != nil {
		return nil, err
	}

	var out []DeadChunk
	for _, c := range chunks {
		if c.Kind != model.KindFunction && c.Kind != model.KindMethod {
			continue
		}
		if callees[c.Name] {
			continue
		}

		confidence := ConfidenceHigh
		switch {
		case entryPointNames[c.Name]:
			confidence = ConfidenceLow
		case testNamePattern.MatchString(c.Name) || isPublicAPI(c) || implementors[c.ID]:
			confidence = ConfidenceMedium
		}

		if !meetsConfidence(confidence, minConfidence) {
			continue
		}
		out = append(out, DeadChunk{Name: c.Name, Origin: c.Origin, StartLine: c.StartLine, Confidence: confidence})
	}
	return out, nil
}

func meetsConfidence(have, want Confidence) bool {
	rank := map[Confidence]int{ConfidenceLow: 0, ConfidenceMedium: 1, ConfidenceHigh: 2}
	return rank[have] >= rank[want]
}

// Deps returns type_edges referencing targetType, or (if reverse) the
// type edges a chunk itself makes.
func (s *Searcher) Deps(target string, reverse bool) ([]DepEdge, error) {
	var edges []model.TypeEdge
	var err error
	if reverse {
		edges, err = s.store.TypeEdgesByChunk(target)
	} else {
		edges, err = s.store.TypeEdgesByTarget(target)
	}
	if err != nil {
		return nil, err
	}
	out := make([]DepEdge, len(edges))
	for i, e := range edges {
		out[i] = DepEdge{ChunkID: e.ChunkID, TargetTypeName: e.TargetTypeName, Kind: string(e.Kind), Origin: e.Origin, Line: e.Line}
	}
	return out, nil
}
