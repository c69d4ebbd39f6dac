package composite

import (
	"context"

	"github.com/jamie8johnson/cqs/internal/retrieval"
)

// onboardSpecs orients a newcomer to a concept: the strongest matches
// first, then what calls into them, so "how is X used" comes packaged
// alongside "what is X".
var onboardSpecs = []PhaseSpec{
	{Name: "overview", Weight: 0.5},
	{Name: "usages", Weight: 0.5},
}

// Onboard runs the `onboard <concept>` composite command.
func Onboard(ctx context.Context, deps Deps, concept string, totalBudget int) Result {
	var overview []retrieval.Hit

	fns := map[string]PhaseFunc{
		"overview": func(ctx context.Context, budget int) (any, int, error) {
			res, err := deps.Retrieval.Search(ctx, retrieval.Query{Text: concept, TopK: 10, TokenBudget: budget, IncludeParent: true})
			if err != nil {
				return nil, 0, err
			}
			overview = res.Hits
			return res.Hits, ApproxTokens(res.Hits), nil
		},
		"usages": func(ctx context.Context, budget int) (any, int, error) {
			var usages []graphHit
			spent := 0
			for _, name := range uniq(namesOfHits(overview)) {
				hits, err := deps.Graph.Callers(name)
				if err != nil {
					continue
				}
				gh := toGraphHits(hits)
				cost := ApproxTokens(gh)
				if spent+cost > budget {
					break
				}
				usages = append(usages, gh...)
				spent += cost
			}
			return usages, spent, nil
		},
	}

	return Run(ctx, "onboard", totalBudget, onboardSpecs, fns)
}
