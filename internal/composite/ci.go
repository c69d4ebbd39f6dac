package composite

import (
	"context"

	"github.com/jamie8johnson/cqs/internal/graph"
)

// CIArgs configures `ci [--gate L]`. BaseRef scopes the impact_diff phase;
// an empty BaseRef skips it.
type CIArgs struct {
	BaseRef string
	Gate    graph.Confidence
}

// GateVerdict is the ci command's final phase: whether the build should
// fail (exit code 3, per spec.md §6's exit-code table).
type GateVerdict struct {
	Pass        bool   `json:"pass"`
	DeadCount   int    `json:"dead_count"`
	GateApplied string `json:"gate_applied"`
}

var ciSpecs = []PhaseSpec{
	{Name: "dead", Weight: 0.5},
	{Name: "impact_diff", Weight: 0.3},
	{Name: "gate", Weight: 0.2},
}

// CI runs the `ci` composite command.
func CI(ctx context.Context, deps Deps, args CIArgs, totalBudget int) Result {
	gate := args.Gate
	if gate == "" {
		gate = graph.ConfidenceHigh
	}
	var deadCount int

	fns := map[string]PhaseFunc{
		"dead": func(ctx context.Context, budget int) (any, int, error) {
			dead, err := deps.Graph.Dead(gate)
			if err != nil {
				return nil, 0, err
			}
			deadCount = len(dead)
			return dead, ApproxTokens(dead), nil
		},
		"impact_diff": func(ctx context.Context, budget int) (any, int, error) {
			if args.BaseRef == "" {
				return nil, 0, nil
			}
			sub := ImpactDiff(ctx, deps, args.BaseRef, "", budget)
			return sub.Phases, ApproxTokens(sub.Phases), nil
		},
		"gate": func(ctx context.Context, budget int) (any, int, error) {
			verdict := GateVerdict{Pass: deadCount == 0, DeadCount: deadCount, GateApplied: string(gate)}
			return verdict, ApproxTokens(verdict), nil
		},
	}

	return Run(ctx, "ci", totalBudget, ciSpecs, fns)
}
