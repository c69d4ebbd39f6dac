package retrieval

import "sort"

// DefaultRRFConstant is the standard smoothing constant (k=60), the same
// value Aman-CERP-amanmcp's fusion.go cites as empirically validated
// across Azure AI Search and OpenSearch.
const DefaultRRFConstant = 60

// rankedList is one scored, ordered candidate list (dense, lexical, or a
// reference's own search results) feeding into fusion.
type rankedList struct {
	name   string
	weight float64
	ids    []string // already sorted best-first
}

type fused struct {
	id      string
	score   float64
	sources []string
}

// fuse combines any number of ranked lists into one fused, sorted result
// using the generalized N-list form of the teacher's two-list RRF:
// score(c) = sum over lists of weight_i / (k + rank_i(c)), with documents
// absent from a list contributing nothing (not a missing-rank penalty,
// since with N lists "missing" is the common case rather than the
// exception the original two-list design assumed).
func fuse(lists []rankedList, k int) []fused {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	scores := make(map[string]*fused)
	for _, list := range lists {
		if list.weight == 0 {
			continue
		}
		for rank, id := range list.ids {
			f, ok := scores[id]
			if !ok {
				f = &fused{id: id}
				scores[id] = f
			}
			f.score += list.weight / float64(k+rank+1)
			f.sources = append(f.sources, list.name)
		}
	}

	out := make([]fused, 0, len(scores))
	for _, f := range scores {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if len(out[i].sources) != len(out[j].sources) {
			return len(out[i].sources) > len(out[j].sources)
		}
		return out[i].id < out[j].id
	})

	if len(out) > 0 && out[0].score > 0 {
		max := out[0].score
		for i := range out {
			out[i].score /= max
		}
	}
	return out
}

func sourceLabel(sources []string) string {
	hasDense, hasLexical := false, false
	var ref string
	for _, s := range sources {
		switch s {
		case "dense":
			hasDense = true
		case "lexical":
			hasLexical = true
		default:
			ref = s
		}
	}
	switch {
	case hasDense && hasLexical:
		return "both"
	case hasDense:
		return "dense"
	case hasLexical:
		return "lexical"
	case ref != "":
		return ref
	default:
		return ""
	}
}
