package chunk

import (
	"regexp"
	"strings"
	"time"

	"github.com/jamie8johnson/cqs/internal/model"
)

// MarkdownChunker produces section chunks from heading boundaries,
// grounded on the teacher's internal/indexer/chunker.go header-splitting
// pass — adapted here to produce model.Chunk (kind=section) rather than
// the teacher's DocumentationChunk, and to flow through the same
// windowing helper every other language uses for oversized spans.
type MarkdownChunker struct{}

func NewMarkdownChunker() *MarkdownChunker { return &MarkdownChunker{} }

var headingPattern = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

func (m *MarkdownChunker) Chunk(origin, language string, source []byte, mtime time.Time) (*Result, error) {
	lines := strings.Split(string(source), "\n")
	if strings.TrimSpace(string(source)) == "" {
		return &Result{}, nil
	}

	now := time.Now()
	type section struct {
		title     string
		startLine int
	}
	sections := []section{{title: fallbackName(origin), startLine: 1}}
	for i, line := range lines {
		if match := headingPattern.FindStringSubmatch(line); match != nil && i > 0 {
			sections = append(sections, section{title: strings.TrimSpace(match[1]), startLine: i + 1})
		}
	}

	result := &Result{}
	for i, sec := range sections {
		end := len(lines)
		if i+1 < len(sections) {
			end = sections[i+1].startLine - 1
		}
		if strings.TrimSpace(extractLines(lines, sec.startLine, end)) == "" {
			continue
		}
		result.Chunks = append(result.Chunks, buildChunks(origin, language, sec.title, model.KindSection, sec.startLine, end, lines, mtime, now)...)
	}
	return result, nil
}
