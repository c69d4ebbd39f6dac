package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

// notFound builds a NotFound cqserr.Error for commands that look up a
// chunk or entity by name and come up empty.
func notFound(op, name string) error {
	return cqserr.New(cqserr.NotFound, op, fmt.Errorf("%q not found", name))
}

// printResult writes v as JSON when --json is set, otherwise calls
// textFn to render the human-readable form. Every query/graph/composite
// command funnels its output through this so --json stays uniform
// across the whole surface (spec.md §6's global --json flag) instead of
// each command hand-rolling its own encoder call.
func printResult(v any, textFn func()) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	textFn()
	return nil
}

// printf writes to stdout unless --quiet is set; --json output is never
// suppressed by --quiet since agents consuming JSON need the payload.
func printf(format string, a ...any) {
	if quiet && !jsonOutput {
		return
	}
	fmt.Printf(format, a...)
}

// formatNumber formats an integer with thousand separators, e.g.
// 1234567 -> "1,234,567", grounded on the teacher's
// internal/cli/indexer_status.go formatNumber.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
