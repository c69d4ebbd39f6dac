// Package store implements C5: the single transactional SQLite database
// backing chunks, call edges, type edges, notes and metadata, plus the
// FTS5 lexical index mirrored alongside it. Grounded on the teacher's
// internal/storage package (schema.go's DDL-and-bootstrap shape,
// fts_index.go's FTS5 CRUD and BM25 query pattern), reshaped around this
// implementation's per-function chunk model.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

// Store owns the single *sql.DB for a project's .cqs/index.db (or a
// reference's own copy) and serializes writes behind a mutex, matching
// the teacher's single-writer-thread model (spec.md §5).
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the database at path, bootstrapping the schema
// on first use and refusing to proceed on a schema version newer than
// this binary understands.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.Open", err)
	}
	db.SetMaxOpenConns(1)

	version, err := getSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, cqserr.New(cqserr.Unknown, "store.Open", err)
	}

	switch {
	case version == 0:
		if err := createSchema(db); err != nil {
			db.Close()
			return nil, cqserr.New(cqserr.Unknown, "store.Open", err)
		}
	case version < CurrentSchemaVersion:
		db.Close()
		return nil, cqserr.New(cqserr.SchemaMismatch, "store.Open",
			fmt.Errorf("database schema version %d is older than %d; run a rebuild", version, CurrentSchemaVersion))
	case version > CurrentSchemaVersion:
		db.Close()
		return nil, cqserr.New(cqserr.SchemaNewerThanCq, "store.Open",
			fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, CurrentSchemaVersion))
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, cqserr.New(cqserr.Unknown, "store.Open", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for packages (graph, notes) that need
// read-only ad hoc queries outside the write-transaction surface below.
func (s *Store) DB() *sql.DB { return s.db }
