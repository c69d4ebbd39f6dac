package composite

import (
	"context"

	"github.com/jamie8johnson/cqs/internal/retrieval"
)

// GatherArgs configures the `gather <query> [--expand N] [--direction D]`
// composite command. Direction selects which edge of the call graph the
// expand phase walks outward from the search hits.
type GatherArgs struct {
	Query     string
	Expand    int    // number of graph hops to expand; 0 disables the expand phase
	Direction string // "callers", "callees", or "both" (default)
}

var gatherSpecs = []PhaseSpec{
	{Name: "search", Weight: 0.6},
	{Name: "expand", Weight: 0.4},
}

// Gather runs the `gather` composite command.
func Gather(ctx context.Context, deps Deps, args GatherArgs, totalBudget int) Result {
	var hits []retrieval.Hit

	fns := map[string]PhaseFunc{
		"search": func(ctx context.Context, budget int) (any, int, error) {
			res, err := deps.Retrieval.Search(ctx, retrieval.Query{Text: args.Query, TopK: 15, TokenBudget: budget})
			if err != nil {
				return nil, 0, err
			}
			hits = res.Hits
			return res.Hits, ApproxTokens(res.Hits), nil
		},
		"expand": func(ctx context.Context, budget int) (any, int, error) {
			if args.Expand <= 0 {
				return nil, 0, nil
			}
			direction := args.Direction
			if direction == "" {
				direction = "both"
			}

			visited := map[string]bool{}
			for _, n := range namesOfHits(hits) {
				visited[n] = true
			}
			frontier := uniq(namesOfHits(hits))

			var expanded []graphHit
			spent := 0
			for level := 0; level < args.Expand && len(frontier) > 0 && ctx.Err() == nil; level++ {
				var next []string
				for _, name := range frontier {
					var rows []graphHit
					if direction == "callers" || direction == "both" {
						if h, err := deps.Graph.Callers(name); err == nil {
							rows = append(rows, toGraphHits(h)...)
						}
					}
					if direction == "callees" || direction == "both" {
						if h, err := deps.Graph.Callees(name); err == nil {
							rows = append(rows, toGraphHits(h)...)
						}
					}
					cost := ApproxTokens(rows)
					if spent+cost > budget {
						return expanded, spent, nil
					}
					expanded = append(expanded, rows...)
					spent += cost
					for _, r := range rows {
						if !visited[r.Name] {
							visited[r.Name] = true
							next = append(next, r.Name)
						}
					}
				}
				frontier = next
			}
			return expanded, spent, nil
		},
	}

	return Run(ctx, "gather", totalBudget, gatherSpecs, fns)
}
