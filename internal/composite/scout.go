package composite

import (
	"context"

	"github.com/jamie8johnson/cqs/internal/retrieval"
)

// scoutSpecs is scout's two-phase waterfall: a quick hybrid search for the
// task description, then callers/callees context around whatever it found,
// so an agent gets orientation before committing to a plan.
var scoutSpecs = []PhaseSpec{
	{Name: "search", Weight: 0.7},
	{Name: "entry_points", Weight: 0.3},
}

// Scout runs the `scout <task>` composite command.
func Scout(ctx context.Context, deps Deps, task string, totalBudget int) Result {
	var found []retrieval.Hit

	fns := map[string]PhaseFunc{
		"search": func(ctx context.Context, budget int) (any, int, error) {
			res, err := deps.Retrieval.Search(ctx, retrieval.Query{Text: task, TopK: 10, TokenBudget: budget, SuppressNotes: true})
			if err != nil {
				return nil, 0, err
			}
			found = res.Hits
			return res.Hits, ApproxTokens(res.Hits), nil
		},
		"entry_points": func(ctx context.Context, budget int) (any, int, error) {
			type entry struct {
				Name    string     `json:"name"`
				Callers []graphHit `json:"callers"`
				Callees []graphHit `json:"callees"`
			}
			var entries []entry
			spent := 0
			for _, name := range uniq(namesOfHits(found)) {
				callers, err := deps.Graph.Callers(name)
				if err != nil {
					continue
				}
				callees, err := deps.Graph.Callees(name)
				if err != nil {
					continue
				}
				e := entry{Name: name, Callers: toGraphHits(callers), Callees: toGraphHits(callees)}
				cost := ApproxTokens(e)
				if spent+cost > budget {
					break
				}
				entries = append(entries, e)
				spent += cost
			}
			return entries, spent, nil
		},
	}

	return Run(ctx, "scout", totalBudget, scoutSpecs, fns)
}
