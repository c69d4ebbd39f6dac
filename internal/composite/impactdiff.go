package composite

import "context"

var impactDiffSpecs = []PhaseSpec{
	{Name: "diff", Weight: 0.3},
	{Name: "impact", Weight: 0.7},
}

// ImpactDiff runs the `impact-diff` composite command: the files changed
// between fromRef and toRef, and the blast radius of the functions they
// touch. An empty toRef diffs against the working tree.
func ImpactDiff(ctx context.Context, deps Deps, fromRef, toRef string, totalBudget int) Result {
	var files []string

	ref := fromRef
	if toRef != "" {
		ref = fromRef + ".." + toRef
	}

	fns := map[string]PhaseFunc{
		"diff": func(ctx context.Context, budget int) (any, int, error) {
			f, err := changedFiles(deps.RootDir, ref)
			if err != nil {
				return nil, 0, err
			}
			files = f
			return f, ApproxTokens(f), nil
		},
		"impact": func(ctx context.Context, budget int) (any, int, error) {
			names := changedChunkNames(deps, files)
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
	}

	return Run(ctx, "impact-diff", totalBudget, impactDiffSpecs, fns)
}
