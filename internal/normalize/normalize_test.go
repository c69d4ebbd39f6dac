package normalize

import "testing"

func TestTextSplitsIdentifiers(t *testing.T) {
	cases := map[string]string{
		"searchFiltered":  "search filtered",
		"search_filtered": "search filtered",
		"HTTPServer":      "http server",
		"already lower":   "already lower",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextStripsFTSOperators(t *testing.T) {
	got := Text(`find "quoted" OR (term)`)
	for _, r := range ftsReserved {
		if containsRune(got, r) {
			t.Fatalf("Text output %q retained reserved rune %q", got, r)
		}
	}
}

func TestTextIsIdempotent(t *testing.T) {
	inputs := []string{"searchFiltered", `weird "chars" (here)`, "snake_case_name", ""}
	for _, in := range inputs {
		once := Text(in)
		twice := Text(once)
		if once != twice {
			t.Errorf("Text not idempotent for %q: Text(x)=%q Text(Text(x))=%q", in, once, twice)
		}
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
