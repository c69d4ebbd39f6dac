package composite

import (
	"context"

	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/retrieval"
)

// taskSpecs is spec.md §4.10's worked example verbatim: 15% scout / 50%
// code / 15% impact / 10% placement / 10% notes.
var taskSpecs = []PhaseSpec{
	{Name: "scout", Weight: 0.15},
	{Name: "code", Weight: 0.50},
	{Name: "impact", Weight: 0.15},
	{Name: "placement", Weight: 0.10},
	{Name: "notes", Weight: 0.10},
}

// Task runs the `task <desc>` composite command.
func Task(ctx context.Context, deps Deps, desc string, totalBudget int) Result {
	var scoutHits, codeHits []retrieval.Hit

	fns := map[string]PhaseFunc{
		"scout": func(ctx context.Context, budget int) (any, int, error) {
			res, err := deps.Retrieval.Search(ctx, retrieval.Query{Text: desc, TopK: 5, TokenBudget: budget, SuppressNotes: true})
			if err != nil {
				return nil, 0, err
			}
			scoutHits = res.Hits
			return res.Hits, ApproxTokens(res.Hits), nil
		},
		"code": func(ctx context.Context, budget int) (any, int, error) {
			res, err := deps.Retrieval.Search(ctx, retrieval.Query{Text: desc, TopK: 20, TokenBudget: budget, IncludeParent: true, SuppressNotes: true})
			if err != nil {
				return nil, 0, err
			}
			codeHits = res.Hits
			return res.Hits, ApproxTokens(res.Hits), nil
		},
		"impact": func(ctx context.Context, budget int) (any, int, error) {
			names := uniq(append(namesOfHits(scoutHits), namesOfHits(codeHits)...))
			var impacts []graphHit
			spent := 0
			for _, name := range names {
				hits, err := deps.Graph.Impact(name, 0, 0)
				if err != nil {
					continue
				}
				gh := toGraphHits(hits)
				cost := ApproxTokens(gh)
				if spent+cost > budget {
					break
				}
				impacts = append(impacts, gh...)
				spent += cost
			}
			return impacts, spent, nil
		},
		"placement": func(ctx context.Context, budget int) (any, int, error) {
			groups := groupByOrigin(codeHits)
			cost := ApproxTokens(groups)
			if cost > budget {
				return nil, 0, nil
			}
			return groups, cost, nil
		},
		"notes": func(ctx context.Context, budget int) (any, int, error) {
			notes := mentioningNotes(deps, desc)
			cost := ApproxTokens(notes)
			if cost > budget {
				notes = nil
				cost = 0
			}
			return notes, cost, nil
		},
	}

	return Run(ctx, "task", totalBudget, taskSpecs, fns)
}

// groupByOrigin buckets hits by file, a cheap proxy for "where would new
// code for this task live" (placement phase).
func groupByOrigin(hits []retrieval.Hit) map[string][]string {
	groups := map[string][]string{}
	for _, h := range hits {
		if h.Chunk == nil {
			continue
		}
		groups[h.Chunk.Origin] = append(groups[h.Chunk.Origin], h.Chunk.Name)
	}
	return groups
}

// mentioningNotes returns stored notes whose mentions list references a
// word from desc, a lightweight stand-in for a full retrieval pass scoped
// just to notes.
func mentioningNotes(deps Deps, desc string) []*model.Note {
	all, err := deps.Store.AllNotes()
	if err != nil {
		return nil
	}
	words := map[string]bool{}
	for _, w := range splitWords(desc) {
		words[w] = true
	}
	var out []*model.Note
	for _, n := range all {
		for _, m := range n.Mentions {
			if words[m] {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		isWord := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if isWord && start == -1 {
			start = i
		} else if !isWord && start != -1 {
			words = append(words, s[start:i])
			start = -1
		}
	}
	if start != -1 {
		words = append(words, s[start:])
	}
	return words
}
