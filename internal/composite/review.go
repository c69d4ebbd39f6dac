package composite

import (
	"context"
	"path/filepath"
)

var reviewSpecs = []PhaseSpec{
	{Name: "diff", Weight: 0.2},
	{Name: "impact", Weight: 0.5},
	{Name: "tests", Weight: 0.3},
}

// Review runs the `review` composite command: working-tree changes against
// ref (empty ref means HEAD), the blast radius of the functions those
// files touch, and which tests cover them.
func Review(ctx context.Context, deps Deps, ref string, totalBudget int) Result {
	var files []string

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
		"tests": func(ctx context.Context, budget int) (any, int, error) {
			names := changedChunkNames(deps, files)
			var tests []graphHit
			spent := 0
			for _, name := range names {
				hits, err := deps.Graph.TestMap(name, 0)
				if err != nil {
					continue
				}
				gh := toGraphHits(hits)
				cost := ApproxTokens(gh)
				if spent+cost > budget {
					break
				}
				tests = append(tests, gh...)
				spent += cost
			}
			return tests, spent, nil
		},
	}

	return Run(ctx, "review", totalBudget, reviewSpecs, fns)
}

// changedChunkNames resolves changed file paths to the function/method
// names they define, so graph queries can run per-name rather than
// per-file.
func changedChunkNames(deps Deps, files []string) []string {
	var names []string
	for _, f := range files {
		if filepath.Ext(f) == "" {
			continue
		}
		chunks, err := deps.Store.ChunksByOrigin("file:" + f)
		if err != nil {
			continue
		}
		for _, c := range chunks {
			if c.Name != "" {
				names = append(names, c.Name)
			}
		}
	}
	return uniq(names)
}
