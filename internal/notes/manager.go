package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/embed"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/store"
	"github.com/jamie8johnson/cqs/internal/vectorindex"
)

// Manager wires the durable notes.toml file to the searchable index: any
// successful add/update/remove against the file also upserts the note
// into the store and its D+1 embedding into the notes vector namespace
// (spec.md §4.11: "On success, embed and upsert... so it is immediately
// searchable").
type Manager struct {
	File     *File
	Store    *store.Store
	Vectors  *vectorindex.Store
	Embedder *embed.NoteProvider

	path string
	lock *flock.Flock
}

// Open loads (or initializes) the notes file at path and wraps it in a
// Manager bound to the given store/vector index/embedder.
func Open(path string, st *store.Store, vecs *vectorindex.Store, embedder *embed.NoteProvider) (*Manager, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{
		File: f, Store: st, Vectors: vecs, Embedder: embedder,
		path: path, lock: flock.New(path + ".lock"),
	}, nil
}

// withLock serializes the notes file's read-modify-write cycle across
// concurrent Managers (spec.md §5: "protected by a file lock during
// read-modify-write"). It blocks until the lock is held, reloads the file
// from disk so fn mutates the latest on-disk state rather than whatever
// Manager happened to hold from a previous Open, then releases on return.
func (m *Manager) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return cqserr.New(cqserr.Unknown, "notes.withLock", err)
	}
	if err := m.lock.Lock(); err != nil {
		return cqserr.New(cqserr.Unknown, "notes.withLock", err)
	}
	defer m.lock.Unlock()

	f, err := Load(m.path)
	if err != nil {
		return err
	}
	m.File = f
	return fn()
}

// Add creates a new note, embeds it, writes it to both the store and the
// vector index, and rewrites the notes file.
func (m *Manager) Add(ctx context.Context, text string, sentiment model.Sentiment, mentions []string) (*model.Note, error) {
	n := &model.Note{ID: uuid.NewString(), Text: text, Sentiment: sentiment, Mentions: mentions}
	err := m.withLock(func() error {
		if err := m.File.Add(n); err != nil {
			return err
		}
		return m.indexAndSave(ctx, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Update rewrites the note whose text matches oldText exactly, re-embeds
// it, and re-upserts it into the index.
func (m *Manager) Update(ctx context.Context, oldText, newText string, sentiment model.Sentiment, mentions []string) (*model.Note, error) {
	var n *model.Note
	err := m.withLock(func() error {
		var idx int
		n, idx = m.File.ByText(oldText)
		if n == nil {
			return cqserr.New(cqserr.NotFound, "notes.Update", fmt.Errorf("no note with text %q", oldText))
		}
		if err := m.File.Update(idx, newText, sentiment, mentions); err != nil {
			return err
		}
		return m.indexAndSave(ctx, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Remove deletes the note matching text exactly from the file, store,
// and vector index.
func (m *Manager) Remove(text string) error {
	return m.withLock(func() error {
		n, idx := m.File.ByText(text)
		if n == nil {
			return cqserr.New(cqserr.NotFound, "notes.Remove", fmt.Errorf("no note with text %q", text))
		}
		m.File.Remove(idx)
		m.Vectors.Notes.Delete(n.ID)
		if err := m.Store.DeleteNote(n.ID); err != nil {
			return err
		}
		return m.File.Save()
	})
}

func (m *Manager) indexAndSave(ctx context.Context, n *model.Note) error {
	vec, err := m.Embedder.EmbedNote(ctx, n.Text, float64(n.Sentiment))
	if err != nil {
		return cqserr.New(cqserr.Unknown, "notes.indexAndSave", err)
	}
	n.Embedding = vec

	if err := m.Store.UpsertNote(n); err != nil {
		return err
	}
	if err := m.Vectors.Notes.Upsert(n.ID, n.Embedding); err != nil {
		return cqserr.New(cqserr.Unknown, "notes.indexAndSave", err)
	}
	return m.File.Save()
}
