package composite

import (
	"context"
	"encoding/json"
)

// Run executes the assemble_inputs → run_phases → truncate_to_budget →
// serialize state machine for one composite command. Phases execute in
// spec order; unused budget from phase n flows into phase n+1
// (task's 15/50/15/10/10 split is the worked example in spec.md §4.10).
// Cancellation at a phase boundary stops the waterfall: phases not yet
// started are marked skipped and Truncated is set.
func Run(ctx context.Context, command string, totalBudget int, specs []PhaseSpec, fns map[string]PhaseFunc) Result {
	phases := make([]PhaseResult, 0, len(specs))
	carry := 0
	cancelled := false

	for _, spec := range specs {
		if cancelled || ctx.Err() != nil {
			phases = append(phases, PhaseResult{Name: spec.Name, Skipped: true})
			cancelled = true
			continue
		}

		fn, ok := fns[spec.Name]
		if !ok {
			phases = append(phases, PhaseResult{Name: spec.Name, Skipped: true})
			continue
		}

		allotted := int(float64(totalBudget)*spec.Weight) + carry
		data, used, err := fn(ctx, allotted)

		pr := PhaseResult{Name: spec.Name, Tokens: used}
		if err != nil {
			pr.Error = err.Error()
		} else {
			pr.Data = data
		}
		phases = append(phases, pr)

		if used < allotted {
			carry = allotted - used
		} else {
			carry = 0
		}
		if ctx.Err() != nil {
			cancelled = true
		}
	}

	phases, overBudget := truncateToBudget(phases, totalBudget)
	return Result{Command: command, Phases: phases, Truncated: cancelled || overBudget}
}

// truncateToBudget drops the payload (but keeps the name/tokens record) of
// any phase whose cumulative cost would exceed totalBudget. Phases are
// walked in waterfall order, so later phases are the ones trimmed.
func truncateToBudget(phases []PhaseResult, totalBudget int) ([]PhaseResult, bool) {
	if totalBudget <= 0 {
		return phases, false
	}
	spent := 0
	truncated := false
	out := make([]PhaseResult, len(phases))
	for i, p := range phases {
		if !p.Skipped && spent+p.Tokens > totalBudget {
			p.Data = nil
			p.Skipped = true
			truncated = true
		} else if !p.Skipped {
			spent += p.Tokens
		}
		out[i] = p
	}
	return out, truncated
}

// ApproxTokens estimates token count from a JSON-serializable value using
// the same bytes/4 heuristic retrieval.approxTokens applies to chunk text,
// so composite budgets and retrieval budgets stay comparable.
func ApproxTokens(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(b) / 4
}
