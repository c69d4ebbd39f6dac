package chunk

import (
	"time"

	"github.com/jamie8johnson/cqs/internal/model"
)

// buildChunks materializes one named span into one chunk, or — if it
// spans more than WindowThreshold lines — a set of overlapping window
// chunks sharing a ParentID (spec.md §4.2). Shared by every language's
// extractor (tree-sitter-backed, Go/AST-backed, Markdown, SQL) so the
// windowing rule is implemented exactly once.
func buildChunks(origin, language, name string, kind model.ChunkKind, startLine, endLine int, lines []string, mtime, now time.Time) []*model.Chunk {
	text := extractLines(lines, startLine, endLine)
	signature := firstLine(text)
	lineCount := endLine - startLine + 1

	if lineCount <= WindowThreshold {
		return []*model.Chunk{{
			ID:          ChunkID(origin, name, startLine, nil),
			Origin:      origin,
			SourceType:  "file",
			Language:    language,
			Kind:        kind,
			Name:        name,
			Signature:   signature,
			Text:        text,
			ContentHash: ContentHash([]byte(text)),
			StartLine:   startLine,
			EndLine:     endLine,
			SourceMtime: mtime,
			CreatedAt:   now,
			UpdatedAt:   now,
		}}
	}

	parentID := ChunkID(origin, name, startLine, nil)
	var chunks []*model.Chunk
	idx := 0
	for start := startLine; start <= endLine; start += WindowStride {
		end := start + WindowLines - 1
		if end > endLine {
			end = endLine
		}
		windowText := extractLines(lines, start, end)
		i := idx
		chunks = append(chunks, &model.Chunk{
			ID:          ChunkID(origin, name, start, &i),
			Origin:      origin,
			SourceType:  "file",
			Language:    language,
			Kind:        kind,
			Name:        name,
			Signature:   signature,
			Text:        windowText,
			ContentHash: ContentHash([]byte(windowText)),
			StartLine:   start,
			EndLine:     end,
			SourceMtime: mtime,
			CreatedAt:   now,
			UpdatedAt:   now,
			ParentID:    parentID,
			WindowIdx:   &i,
		})
		idx++
		if end == endLine {
			break
		}
	}
	return chunks
}
