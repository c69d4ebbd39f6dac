// Package indexer implements C7: discovery, staleness detection and the
// incremental chunk->embed->store->vectorindex pipeline, grounded on the
// teacher's internal/indexer/discovery.go (glob-based walk over ignore
// patterns) and internal/cli/index.go's runIndex orchestration.
package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sabhiram/go-gitignore"

	"github.com/jamie8johnson/cqs/internal/chunk"
)

// Discovery walks a project root, honoring .gitignore (real precedence
// via sabhiram/go-gitignore, unlike the teacher's flat glob-pattern
// ignore list) plus any project-level override globs, and returns every
// file the dispatcher knows how to chunk.
type Discovery struct {
	rootDir    string
	dispatcher *chunk.Dispatcher
	ignore     *ignore.GitIgnore
	overrides  []glob.Glob
	noIgnore   bool
}

// NewDiscovery builds a Discovery over rootDir. overridePatterns are
// additional glob ignore rules from .cqs.toml, applied on top of
// .gitignore; noIgnore disables both when true (the `--no-ignore` flag).
func NewDiscovery(rootDir string, dispatcher *chunk.Dispatcher, overridePatterns []string, noIgnore bool) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir, dispatcher: dispatcher, noIgnore: noIgnore}

	if !noIgnore {
		if data, err := os.ReadFile(filepath.Join(rootDir, ".gitignore")); err == nil {
			d.ignore = ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
		}
	}

	for _, p := range overridePatterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		d.overrides = append(d.overrides, g)
	}

	return d, nil
}

// File is one discovered source file with its chunker already resolved.
type File struct {
	Path     string // absolute path
	Origin   string // "file:" + path relative to rootDir
	Language string
	Chunker  chunk.Chunker
}

// Walk returns every non-ignored, chunkable file under the project root.
func (d *Discovery) Walk() ([]File, error) {
	var files []File
	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(d.rootDir, path)
		if relErr != nil {
			return relErr
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if !d.noIgnore && (relPath == ".cqs" || strings.HasPrefix(relPath, ".cqs/") || relPath == ".git") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) {
			return nil
		}

		chunker, lang, ok := d.dispatcher.ForPath(path)
		if !ok {
			return nil
		}
		files = append(files, File{Path: path, Origin: "file:" + relPath, Language: lang, Chunker: chunker})
		return nil
	})
	return files, err
}

// ShouldIgnore reports whether relPath (relative to rootDir) is excluded
// by .gitignore or the .cqs.toml override globs. Exposed so callers like
// the watcher can skip waking the debounce timer for paths the indexer
// would discard anyway.
func (d *Discovery) ShouldIgnore(relPath string) bool {
	return d.shouldIgnore(relPath)
}

func (d *Discovery) shouldIgnore(relPath string) bool {
	if d.noIgnore {
		return false
	}
	if d.ignore != nil && d.ignore.MatchesPath(relPath) {
		return true
	}
	for _, g := range d.overrides {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}
