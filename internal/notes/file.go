// Package notes implements C11: the durable TOML notes file plus
// index write-through so a note is immediately searchable. Atomic-write
// discipline (temp file + rename) is grounded on the teacher's
// internal/cache/settings.go Save.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/model"
)

// FileName is the default notes file, relative to the project root.
const FileName = "docs/notes.toml"

// record is the on-disk shape of one note. Header comments above the
// table array are preserved by reading the file as raw bytes and
// re-emitting only the leading comment block, since toml.Marshal has no
// concept of a file-level header.
type record struct {
	ID          string    `toml:"id"`
	Text        string    `toml:"text"`
	Sentiment   float64   `toml:"sentiment"`
	Mentions    []string  `toml:"mentions,omitempty"`
	SourcePath  string    `toml:"source_path,omitempty"`
	SourceMtime time.Time `toml:"source_mtime,omitempty"`
	CreatedAt   time.Time `toml:"created_at"`
	UpdatedAt   time.Time `toml:"updated_at"`
}

type document struct {
	Notes []record `toml:"note"`
}

// File is the parsed notes.toml, with its leading comment header
// preserved verbatim for round-tripping.
type File struct {
	path   string
	header []byte
	notes  []*model.Note
}

// Load reads path (creating an empty document in memory if it does not
// exist yet — the file on disk is only created on first Save).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{path: path}, nil
	}
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "notes.Load", err)
	}

	header := leadingComments(data)

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, cqserr.New(cqserr.ParseError, "notes.Load", err)
	}

	notes := make([]*model.Note, len(doc.Notes))
	for i, r := range doc.Notes {
		notes[i] = &model.Note{
			ID:          r.ID,
			Text:        r.Text,
			Sentiment:   model.Sentiment(r.Sentiment),
			Mentions:    r.Mentions,
			SourcePath:  r.SourcePath,
			SourceMtime: r.SourceMtime,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return &File{path: path, header: header, notes: notes}, nil
}

// leadingComments returns every line at the start of data that begins
// with '#', plus the blank line separating it from the first table, so a
// hand-written header survives a rewrite.
func leadingComments(data []byte) []byte {
	lines := splitLines(data)
	end := 0
	for end < len(lines) && (len(lines[end]) == 0 || lines[end][0] == '#') {
		end++
	}
	var out []byte
	for _, l := range lines[:end] {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return out
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

// Notes returns every note currently held in memory.
func (f *File) Notes() []*model.Note {
	return f.notes
}

// ByText finds a note by exact text match, the lookup key update/remove
// use (spec.md §4.11).
func (f *File) ByText(text string) (*model.Note, int) {
	for i, n := range f.notes {
		if n.Text == text {
			return n, i
		}
	}
	return nil, -1
}

// Add appends a new note, validating sentiment against the closed set.
func (f *File) Add(n *model.Note) error {
	if !model.ValidSentiment(n.Sentiment) {
		return cqserr.New(cqserr.InvalidInput, "notes.Add", fmt.Errorf("invalid sentiment"))
	}
	now := n.CreatedAt
	if now.IsZero() {
		now = timeNow()
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	f.notes = append(f.notes, n)
	return nil
}

// Update replaces the note at index idx in place.
func (f *File) Update(idx int, text string, sentiment model.Sentiment, mentions []string) error {
	if !model.ValidSentiment(sentiment) {
		return cqserr.New(cqserr.InvalidInput, "notes.Update", fmt.Errorf("invalid sentiment"))
	}
	n := f.notes[idx]
	n.Text = text
	n.Sentiment = sentiment
	n.Mentions = mentions
	n.UpdatedAt = timeNow()
	return nil
}

// Remove deletes the note at index idx.
func (f *File) Remove(idx int) {
	f.notes = append(f.notes[:idx], f.notes[idx+1:]...)
}

// Save atomically rewrites the notes file, preserving the header.
func (f *File) Save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cqserr.New(cqserr.Unknown, "notes.Save", err)
	}

	records := make([]record, len(f.notes))
	for i, n := range f.notes {
		records[i] = record{
			ID: n.ID, Text: n.Text, Sentiment: float64(n.Sentiment), Mentions: n.Mentions,
			SourcePath: n.SourcePath, SourceMtime: n.SourceMtime,
			CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt,
		}
	}
	body, err := toml.Marshal(document{Notes: records})
	if err != nil {
		return cqserr.New(cqserr.Unknown, "notes.Save", err)
	}

	out := append(append([]byte{}, f.header...), body...)

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, out, 0o644); err != nil {
		return cqserr.New(cqserr.Unknown, "notes.Save", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return cqserr.New(cqserr.Unknown, "notes.Save", err)
	}
	return nil
}

func timeNow() time.Time { return time.Now().UTC() }
