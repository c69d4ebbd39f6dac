package store

import (
	"database/sql"
	"time"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/model"
	"github.com/jamie8johnson/cqs/internal/normalize"
)

func timeStr(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeStr(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// OriginState is the staleness fingerprint for one source file.
type OriginState struct {
	Origin      string
	ContentHash string
	SourceMtime time.Time
}

// OriginState returns the last recorded fingerprint for origin, or a zero
// value and ok=false if it has never been indexed.
func (s *Store) OriginState(origin string) (OriginState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hash, mtime string
	err := s.db.QueryRow("SELECT content_hash, source_mtime FROM origins WHERE origin = ?", origin).Scan(&hash, &mtime)
	if err == sql.ErrNoRows {
		return OriginState{}, false, nil
	}
	if err != nil {
		return OriginState{}, false, cqserr.New(cqserr.Unknown, "store.OriginState", err)
	}
	return OriginState{Origin: origin, ContentHash: hash, SourceMtime: parseTimeStr(mtime)}, true, nil
}

// WriteFile replaces every chunk, call, function_call and type-edge row
// for origin in one transaction, per spec.md §4.7's "parse -> embed ->
// write -> vector-insert strictly ordered within a file" rule. It does not
// touch the vector index; the caller upserts the chunk vectors after
// WriteFile returns (see C6/C7 wiring).
func (s *Store) WriteFile(origin, contentHash string, sourceMtime time.Time, chunks []*model.Chunk, calls []*model.Call, edges []*model.TypeEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunks_fts WHERE chunk_id IN (SELECT chunk_id FROM chunks WHERE origin = ?)", origin); err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	if _, err := tx.Exec("DELETE FROM chunks WHERE origin = ?", origin); err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	if _, err := tx.Exec("DELETE FROM calls WHERE origin = ?", origin); err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	if _, err := tx.Exec("DELETE FROM function_calls WHERE origin = ?", origin); err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	if _, err := tx.Exec("DELETE FROM type_edges WHERE origin = ?", origin); err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}

	now := timeStr(time.Now())
	insertChunk, err := tx.Prepare(`
		INSERT INTO chunks (chunk_id, origin, source_type, language, kind, name, signature, text,
			content_hash, doc, start_line, end_line, embedding, source_mtime, created_at, updated_at,
			parent_id, window_idx)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	defer insertChunk.Close()

	insertFts, err := tx.Prepare("INSERT INTO chunks_fts (chunk_id, name, doc, text) VALUES (?,?,?,?)")
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	defer insertFts.Close()

	for _, c := range chunks {
		createdAt := now
		if !c.CreatedAt.IsZero() {
			createdAt = timeStr(c.CreatedAt)
		}
		var windowIdx interface{}
		if c.WindowIdx != nil {
			windowIdx = *c.WindowIdx
		}
		_, err := insertChunk.Exec(c.ID, c.Origin, c.SourceType, c.Language, string(c.Kind), c.Name,
			c.Signature, c.Text, c.ContentHash, c.Doc, c.StartLine, c.EndLine, encodeEmbedding(c.Embedding),
			timeStr(c.SourceMtime), createdAt, now, c.ParentID, windowIdx)
		if err != nil {
			return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
		}
		// Normalized the same way buildFTSQuery normalizes the query side,
		// so "searchFiltered" and "search filtered" both tokenize to the
		// same terms.
		if _, err := insertFts.Exec(c.ID, normalize.Text(c.Name), normalize.Text(c.Doc), normalize.Text(c.Text)); err != nil {
			return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
		}
	}

	insertCall, err := tx.Prepare("INSERT INTO calls (chunk_id, caller_name, callee_name, origin, line) VALUES (?,?,?,?,?)")
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	defer insertCall.Close()
	insertFnCall, err := tx.Prepare("INSERT INTO function_calls (caller_name, callee_name, origin, line) VALUES (?,?,?,?)")
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	defer insertFnCall.Close()

	for _, call := range calls {
		if _, err := insertFnCall.Exec(call.CallerName, call.CalleeName, call.Origin, call.Line); err != nil {
			return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
		}
		if call.ChunkID != "" {
			if _, err := insertCall.Exec(call.ChunkID, call.CallerName, call.CalleeName, call.Origin, call.Line); err != nil {
				return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
			}
		}
	}

	insertEdge, err := tx.Prepare("INSERT INTO type_edges (chunk_id, target_type_name, kind, origin, line) VALUES (?,?,?,?,?)")
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	defer insertEdge.Close()
	for _, e := range edges {
		if _, err := insertEdge.Exec(e.ChunkID, e.TargetTypeName, string(e.Kind), e.Origin, e.Line); err != nil {
			return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO origins (origin, content_hash, source_mtime, indexed_at) VALUES (?,?,?,?)
		ON CONFLICT(origin) DO UPDATE SET content_hash = excluded.content_hash,
			source_mtime = excluded.source_mtime, indexed_at = excluded.indexed_at
	`, origin, contentHash, timeStr(sourceMtime), now)
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}

	if err := tx.Commit(); err != nil {
		return cqserr.New(cqserr.Unknown, "store.WriteFile", err)
	}
	return nil
}

// DeleteOrigin removes every row for origin — used by GC when a source
// file has disappeared from disk.
func (s *Store) DeleteOrigin(origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.DeleteOrigin", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM chunks_fts WHERE chunk_id IN (SELECT chunk_id FROM chunks WHERE origin = ?)", origin); err != nil {
		return cqserr.New(cqserr.Unknown, "store.DeleteOrigin", err)
	}
	for _, table := range []string{"chunks", "calls", "function_calls", "type_edges", "origins"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE origin = ?", origin); err != nil {
			return cqserr.New(cqserr.Unknown, "store.DeleteOrigin", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return cqserr.New(cqserr.Unknown, "store.DeleteOrigin", err)
	}
	return nil
}

// AllOrigins lists every origin currently indexed, for GC's existence check.
func (s *Store) AllOrigins() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT origin FROM origins")
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.AllOrigins", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.AllOrigins", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ChunkByID fetches a single chunk by its deterministic id.
func (s *Store) ChunkByID(id string) (*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRow(chunkSelectColumns+" WHERE chunk_id = ?", id)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, cqserr.New(cqserr.NotFound, "store.ChunkByID", err)
	}
	return c, err
}

// ChunksByName fetches every chunk whose Name matches exactly, across all
// origins — the graph package's primary symbol lookup.
func (s *Store) ChunksByName(name string) ([]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(chunkSelectColumns+" WHERE name = ?", name)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.ChunksByName", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ChunksByOrigin returns every chunk belonging to one source file, ordered
// by start line.
func (s *Store) ChunksByOrigin(origin string) ([]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(chunkSelectColumns+" WHERE origin = ? ORDER BY start_line", origin)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.ChunksByOrigin", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ChunkCount reports the total number of indexed chunks, for `stats`.
func (s *Store) ChunkCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n)
	if err != nil {
		return 0, cqserr.New(cqserr.Unknown, "store.ChunkCount", err)
	}
	return n, nil
}

const chunkSelectColumns = `SELECT chunk_id, origin, source_type, language, kind, name, signature, text,
	content_hash, doc, start_line, end_line, embedding, source_mtime, created_at, updated_at,
	parent_id, window_idx FROM chunks`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChunk(row rowScanner) (*model.Chunk, error) {
	var c model.Chunk
	var kind, sourceMtime, createdAt, updatedAt string
	var embBlob []byte
	var windowIdx sql.NullInt64
	err := row.Scan(&c.ID, &c.Origin, &c.SourceType, &c.Language, &kind, &c.Name, &c.Signature, &c.Text,
		&c.ContentHash, &c.Doc, &c.StartLine, &c.EndLine, &embBlob, &sourceMtime, &createdAt, &updatedAt,
		&c.ParentID, &windowIdx)
	if err != nil {
		return nil, err
	}
	c.Kind = model.ChunkKind(kind)
	c.SourceMtime = parseTimeStr(sourceMtime)
	c.CreatedAt = parseTimeStr(createdAt)
	c.UpdatedAt = parseTimeStr(updatedAt)
	if windowIdx.Valid {
		v := int(windowIdx.Int64)
		c.WindowIdx = &v
	}
	emb, err := decodeEmbedding(embBlob)
	if err != nil {
		return nil, err
	}
	c.Embedding = emb
	return &c, nil
}

func scanChunks(rows *sql.Rows) ([]*model.Chunk, error) {
	var out []*model.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.scanChunks", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
