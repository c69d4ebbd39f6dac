package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CurrentSchemaVersion is the migration pivot recorded in metadata.
const CurrentSchemaVersion = 1

// createSchema builds every table, index, FTS5 shadow table and trigger
// needed by the store, grounded on the teacher's internal/storage/schema.go
// layout and trigger-sync idiom, reshaped around the chunk/call/type-edge/
// note model this implementation indexes instead of the teacher's
// files/types/functions tables.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	statements := []string{
		createChunksTable,
		createCallsTable,
		createFunctionCallsTable,
		createTypeEdgesTable,
		createNotesTable,
		createMetadataTable,
		createOriginsTable,
	}
	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema statement %d: %w", i, err)
		}
	}
	for i, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("create index %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	// FTS5 virtual tables must be created outside the enclosing
	// transaction, same as the teacher's CreateFTSIndex.
	if err := createFTSTable(db); err != nil {
		return fmt.Errorf("create fts table: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.Exec(`
		INSERT INTO metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('embedding_model', '', ?),
			('embedding_dim', '0', ?),
			('notes_embedding_dim', '0', ?),
			('last_reindex', '', ?)
	`, fmt.Sprintf("%d", CurrentSchemaVersion), now, now, now, now, now)
	if err != nil {
		return fmt.Errorf("bootstrap metadata: %w", err)
	}
	return nil
}

const createChunksTable = `
CREATE TABLE chunks (
    chunk_id     TEXT PRIMARY KEY,
    origin       TEXT NOT NULL,
    source_type  TEXT NOT NULL,
    language     TEXT NOT NULL,
    kind         TEXT NOT NULL,
    name         TEXT NOT NULL,
    signature    TEXT NOT NULL,
    text         TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    doc          TEXT NOT NULL DEFAULT '',
    start_line   INTEGER NOT NULL,
    end_line     INTEGER NOT NULL,
    embedding    BLOB NOT NULL,
    source_mtime TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL,
    parent_id    TEXT NOT NULL DEFAULT '',
    window_idx   INTEGER
)
`

const createCallsTable = `
CREATE TABLE calls (
    chunk_id    TEXT NOT NULL,
    caller_name TEXT NOT NULL,
    callee_name TEXT NOT NULL,
    origin      TEXT NOT NULL,
    line        INTEGER NOT NULL
)
`

// function_calls is a denormalized, file-scoped record of the same edges
// that survives windowing: a call inside an oversized function whose
// enclosing chunk got split still has a caller/callee/origin/line triple
// recorded here even when chunk_id above is empty.
const createFunctionCallsTable = `
CREATE TABLE function_calls (
    caller_name TEXT NOT NULL,
    callee_name TEXT NOT NULL,
    origin      TEXT NOT NULL,
    line        INTEGER NOT NULL
)
`

const createTypeEdgesTable = `
CREATE TABLE type_edges (
    chunk_id         TEXT NOT NULL,
    target_type_name TEXT NOT NULL,
    kind             TEXT NOT NULL,
    origin           TEXT NOT NULL,
    line             INTEGER NOT NULL
)
`

const createNotesTable = `
CREATE TABLE notes (
    note_id      TEXT PRIMARY KEY,
    text         TEXT NOT NULL,
    sentiment    REAL NOT NULL,
    mentions     TEXT NOT NULL DEFAULT '[]',
    embedding    BLOB NOT NULL,
    source_path  TEXT NOT NULL DEFAULT '',
    source_mtime TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
)
`

const createMetadataTable = `
CREATE TABLE metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// origins tracks one row per indexed source file so GC can find chunks
// whose origin no longer exists on disk without a directory walk.
const createOriginsTable = `
CREATE TABLE origins (
    origin       TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    source_mtime TEXT NOT NULL,
    indexed_at   TEXT NOT NULL
)
`

var schemaIndexes = []string{
	"CREATE INDEX idx_chunks_origin ON chunks(origin)",
	"CREATE INDEX idx_chunks_name ON chunks(name)",
	"CREATE INDEX idx_chunks_kind ON chunks(kind)",
	"CREATE INDEX idx_chunks_parent_id ON chunks(parent_id)",
	"CREATE INDEX idx_calls_caller ON calls(caller_name)",
	"CREATE INDEX idx_calls_callee ON calls(callee_name)",
	"CREATE INDEX idx_function_calls_caller ON function_calls(caller_name)",
	"CREATE INDEX idx_function_calls_callee ON function_calls(callee_name)",
	"CREATE INDEX idx_type_edges_chunk ON type_edges(chunk_id)",
	"CREATE INDEX idx_type_edges_target ON type_edges(target_type_name)",
	"CREATE INDEX idx_notes_sentiment ON notes(sentiment)",
}

// createFTSTable creates the chunks_fts shadow table only. Unlike the
// teacher's copy-triggers, rows here are written by Go in WriteFile/
// DeleteOrigin rather than by AFTER INSERT/UPDATE/DELETE triggers on
// chunks, because the FTS row must hold normalize.Text(name/doc/text)
// rather than a blind copy of the chunks columns — the query path
// already normalizes its terms in buildFTSQuery, and the unicode61
// tokenizer only agrees with that normalization if the indexed text
// went through the same splitter.
func createFTSTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE VIRTUAL TABLE chunks_fts USING fts5(
			chunk_id UNINDEXED,
			name,
			doc,
			text,
			tokenize = 'unicode61 remove_diacritics 0'
		)
	`)
	return err
}

// getSchemaVersion returns 0 for a database with no metadata table yet.
func getSchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var v string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var version int
	if _, err := fmt.Sscanf(v, "%d", &version); err != nil {
		return 0, fmt.Errorf("parse schema_version %q: %w", v, err)
	}
	return version, nil
}
