package chunk

import (
	"regexp"
	"strings"
	"time"

	"github.com/jamie8johnson/cqs/internal/model"
)

// SQLChunker extracts CREATE PROCEDURE/FUNCTION/VIEW/TABLE bodies with a
// regexp heuristic. No SQL tree-sitter grammar ships anywhere in the
// example pack (see DESIGN.md), so this is the one chunker in the package
// that does not walk a parse tree at all — a deliberate, documented
// stdlib fallback rather than a fabricated dependency.
type SQLChunker struct{}

func NewSQLChunker() *SQLChunker { return &SQLChunker{} }

var sqlDefPattern = regexp.MustCompile(`(?im)^\s*CREATE\s+(OR\s+REPLACE\s+)?(PROCEDURE|FUNCTION|VIEW|TABLE)\s+([a-zA-Z0-9_."\[\]` + "`" + `]+)`)

func (s *SQLChunker) Chunk(origin, language string, source []byte, mtime time.Time) (*Result, error) {
	lines := strings.Split(string(source), "\n")
	now := time.Now()
	result := &Result{}

	type span struct {
		name      string
		kind      model.ChunkKind
		startLine int
	}
	var spans []span
	for i, line := range lines {
		m := sqlDefPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := model.KindFunction
		if strings.EqualFold(m[2], "TABLE") {
			kind = model.KindStruct
		}
		name := strings.Trim(m[3], `."[]`+"`")
		spans = append(spans, span{name: name, kind: kind, startLine: i + 1})
	}

	if len(spans) == 0 {
		return wholeFileFallback(origin, language, source, mtime, fallbackName(origin)), nil
	}

	for i, sp := range spans {
		end := len(lines)
		if i+1 < len(spans) {
			end = spans[i+1].startLine - 1
		}
		result.Chunks = append(result.Chunks, buildChunks(origin, language, sp.name, sp.kind, sp.startLine, end, lines, mtime, now)...)
	}
	return result, nil
}
