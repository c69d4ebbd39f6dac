package chunk

import (
	"path/filepath"
	"strings"

	"github.com/jamie8johnson/cqs/internal/langs"
)

// Dispatcher selects the right Chunker for a file extension. go, sql and
// markdown are handled by dedicated extractors outside the langs
// registry (see golang.go, sql.go, markdown.go); every other extension is
// resolved against the tree-sitter registry.
type Dispatcher struct {
	registry *langs.Registry
	treeSitterCache map[string]*TreeSitterChunker
	goChunker       *GoChunker
	sqlChunker      *SQLChunker
	mdChunker       *MarkdownChunker
}

func NewDispatcher(registry *langs.Registry) *Dispatcher {
	return &Dispatcher{
		registry:        registry,
		treeSitterCache: map[string]*TreeSitterChunker{},
		goChunker:       NewGoChunker(),
		sqlChunker:      NewSQLChunker(),
		mdChunker:       NewMarkdownChunker(),
	}
}

// ForExtension returns (chunker, languageTag, ok) for a file extension
// (including the leading dot).
func (d *Dispatcher) ForExtension(ext string) (Chunker, string, bool) {
	ext = strings.ToLower(ext)
	switch ext {
	case ".go":
		return d.goChunker, "go", true
	case ".sql":
		return d.sqlChunker, "sql", true
	case ".md", ".markdown":
		return d.mdChunker, "markdown", true
	}

	spec, ok := d.registry.ByExtension(ext)
	if !ok {
		return nil, "", false
	}
	c, cached := d.treeSitterCache[spec.Name]
	if !cached {
		c = NewTreeSitterChunker(spec)
		d.treeSitterCache[spec.Name] = c
	}
	return c, spec.Name, true
}

// ForPath is a convenience wrapper over ForExtension for a file path.
func (d *Dispatcher) ForPath(path string) (Chunker, string, bool) {
	return d.ForExtension(filepath.Ext(path))
}

// SupportedExtensions lists every extension the dispatcher can chunk.
func (d *Dispatcher) SupportedExtensions() []string {
	exts := append([]string{".go", ".sql", ".md", ".markdown"}, d.registry.Extensions()...)
	return exts
}
