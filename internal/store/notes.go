package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/model"
)

// UpsertNote writes or replaces a note by ID.
func (s *Store) UpsertNote(n *model.Note) error {
	if !model.ValidSentiment(n.Sentiment) {
		return cqserr.New(cqserr.InvalidInput, "store.UpsertNote", nil)
	}
	mentions, err := json.Marshal(n.Mentions)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.UpsertNote", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := timeStr(time.Now())
	createdAt := now
	if !n.CreatedAt.IsZero() {
		createdAt = timeStr(n.CreatedAt)
	}
	_, err = s.db.Exec(`
		INSERT INTO notes (note_id, text, sentiment, mentions, embedding, source_path, source_mtime, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(note_id) DO UPDATE SET text=excluded.text, sentiment=excluded.sentiment,
			mentions=excluded.mentions, embedding=excluded.embedding, source_path=excluded.source_path,
			source_mtime=excluded.source_mtime, updated_at=excluded.updated_at
	`, n.ID, n.Text, float64(n.Sentiment), string(mentions), encodeEmbedding(n.Embedding),
		n.SourcePath, timeStr(n.SourceMtime), createdAt, now)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.UpsertNote", err)
	}
	return nil
}

// DeleteNote removes a note by ID.
func (s *Store) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("DELETE FROM notes WHERE note_id = ?", id)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.DeleteNote", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cqserr.New(cqserr.NotFound, "store.DeleteNote", sql.ErrNoRows)
	}
	return nil
}

// NoteByID fetches a single note, for resolving vector index hits (which
// key on note_id) back into full note records at retrieval time.
func (s *Store) NoteByID(id string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRow(noteSelectColumns+" WHERE note_id = ?", id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, cqserr.New(cqserr.NotFound, "store.NoteByID", err)
	}
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.NoteByID", err)
	}
	return n, nil
}

// NoteByText finds a note by an exact match of its text, for update/remove
// by content rather than by opaque ID.
func (s *Store) NoteByText(text string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRow(noteSelectColumns+" WHERE text = ?", text)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, cqserr.New(cqserr.NotFound, "store.NoteByText", err)
	}
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.NoteByText", err)
	}
	return n, nil
}

// AllNotes lists every note, for the batch export / notes listing surface.
func (s *Store) AllNotes() ([]*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(noteSelectColumns)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.AllNotes", err)
	}
	defer rows.Close()

	var out []*model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.AllNotes", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

const noteSelectColumns = `SELECT note_id, text, sentiment, mentions, embedding, source_path, source_mtime, created_at, updated_at FROM notes`

func scanNote(row rowScanner) (*model.Note, error) {
	var n model.Note
	var sentiment float64
	var mentions string
	var embBlob []byte
	var sourceMtime, createdAt, updatedAt string
	err := row.Scan(&n.ID, &n.Text, &sentiment, &mentions, &embBlob, &n.SourcePath, &sourceMtime, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	n.Sentiment = model.Sentiment(sentiment)
	if err := json.Unmarshal([]byte(mentions), &n.Mentions); err != nil {
		return nil, err
	}
	emb, err := decodeEmbedding(embBlob)
	if err != nil {
		return nil, err
	}
	n.Embedding = emb
	n.SourceMtime = parseTimeStr(sourceMtime)
	n.CreatedAt = parseTimeStr(createdAt)
	n.UpdatedAt = parseTimeStr(updatedAt)
	return &n, nil
}
