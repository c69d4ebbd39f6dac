package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"
)

// maxFileCacheWeight bounds the snippet cache the way the teacher's
// searcher.go bounds its otter file cache: an approximate cost function
// over line count rather than exact byte accounting.
const maxFileCacheWeight = 50 * 1024 * 1024

// snippetCache reads and caches whole-file line slices for context
// extraction, grounded on the teacher's searcher.go getFileLines.
type snippetCache struct {
	rootDir string
	cache   otter.Cache[string, []string]
}

func newSnippetCache(rootDir string) (*snippetCache, error) {
	cache, err := otter.MustBuilder[string, []string](maxFileCacheWeight).
		Cost(func(key string, value []string) uint32 { return uint32(len(value) * 100) }).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("graph: create snippet cache: %w", err)
	}
	return &snippetCache{rootDir: rootDir, cache: cache}, nil
}

// extract returns the line-numbered snippet around [line-contextLines,
// line+contextLines] (1-indexed), the call line ±contextLines per
// spec.md §4.9 impact.
func (c *snippetCache) extract(relPath string, line, contextLines int) (string, error) {
	lines, err := c.fileLines(relPath)
	if err != nil {
		return "", err
	}
	from := line - contextLines - 1
	if from < 0 {
		from = 0
	}
	to := line + contextLines
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return "", nil
	}
	snippet := strings.Join(lines[from:to], "\n")
	return fmt.Sprintf("// lines %d-%d\n%s", from+1, to, snippet), nil
}

func (c *snippetCache) fileLines(relPath string) ([]string, error) {
	path := strings.TrimPrefix(relPath, "file:")
	if lines, ok := c.cache.Get(path); ok {
		return lines, nil
	}
	content, err := os.ReadFile(filepath.Join(c.rootDir, path))
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	c.cache.Set(path, lines)
	return lines, nil
}
