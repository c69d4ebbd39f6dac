package store

import (
	"strings"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/normalize"
)

// LexicalHit is one row of a lexical (FTS5 BM25) search result.
type LexicalHit struct {
	ChunkID string
	Rank    float64 // BM25 rank; lower is better in SQLite's native scale
}

// SearchLexical runs a BM25 query over chunks_fts, grounded on the
// teacher's internal/storage/fts_index.go QueryFTS: escape the query,
// wrap it as an FTS5 MATCH expression, order by bm25(). Identifier
// splitting/lowercasing happens once up front via normalize.Text so the
// tokenizer sees "http server" rather than "HTTPServer".
func (s *Store) SearchLexical(query string, limit int) ([]LexicalHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matchExpr := buildFTSQuery(query)
	if matchExpr == "" {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT chunk_id, bm25(chunks_fts) AS rank
		FROM chunks_fts
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, matchExpr, limit)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.SearchLexical", err)
	}
	defer rows.Close()

	var hits []LexicalHit
	for rows.Next() {
		var h LexicalHit
		if err := rows.Scan(&h.ChunkID, &h.Rank); err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.SearchLexical", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// buildFTSQuery turns free text into an FTS5 MATCH expression: normalize
// every term, then OR them together so a multi-word query still matches
// chunks containing any one term (ranking handles relative relevance).
func buildFTSQuery(input string) string {
	normalized := normalize.Text(input)
	terms := strings.Fields(normalized)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}
