package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/jamie8johnson/cqs/internal/cqserr"
)

func (s *Store) getMeta(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err != nil {
		return "", cqserr.New(cqserr.Unknown, "store.getMeta", err)
	}
	return v, nil
}

func (s *Store) setMeta(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return cqserr.New(cqserr.Unknown, "store.setMeta", err)
	}
	return nil
}

// EmbeddingIdentity is the (model, dimension) pair recorded at the last
// successful index build.
type EmbeddingIdentity struct {
	Model string
	Dim   int
}

func (s *Store) EmbeddingIdentity() (EmbeddingIdentity, error) {
	model, err := s.getMeta("embedding_model")
	if err != nil {
		return EmbeddingIdentity{}, err
	}
	dimStr, err := s.getMeta("embedding_dim")
	if err != nil {
		return EmbeddingIdentity{}, err
	}
	var dim int
	fmt.Sscanf(dimStr, "%d", &dim)
	return EmbeddingIdentity{Model: model, Dim: dim}, nil
}

// CheckEmbeddingIdentity compares the store's recorded model/dimension
// against the embedder actually configured, returning a ModelMismatch
// error when they disagree and the store is non-empty. A zero-dimension
// record means the store has never been indexed, which is not a mismatch.
func (s *Store) CheckEmbeddingIdentity(model string, dim int) error {
	recorded, err := s.EmbeddingIdentity()
	if err != nil {
		return err
	}
	if recorded.Dim == 0 {
		return nil
	}
	if recorded.Model != model || recorded.Dim != dim {
		return cqserr.New(cqserr.ModelMismatch, "store.CheckEmbeddingIdentity",
			fmt.Errorf("index built with model=%q dim=%d, configured embedder is model=%q dim=%d",
				recorded.Model, recorded.Dim, model, dim))
	}
	return nil
}

// SetEmbeddingIdentity records the model/dimension a fresh index build
// was written with.
func (s *Store) SetEmbeddingIdentity(model string, dim int) error {
	if err := s.setMeta("embedding_model", model); err != nil {
		return err
	}
	return s.setMeta("embedding_dim", fmt.Sprintf("%d", dim))
}

func (s *Store) SetNotesEmbeddingDim(dim int) error {
	return s.setMeta("notes_embedding_dim", fmt.Sprintf("%d", dim))
}

func (s *Store) SetLastReindex(t time.Time) error {
	return s.setMeta("last_reindex", t.UTC().Format(time.RFC3339))
}

func (s *Store) LastReindex() (time.Time, error) {
	v, err := s.getMeta("last_reindex")
	if err != nil {
		return time.Time{}, err
	}
	return parseTimeStr(v), nil
}

// SetAuditMode records a bounded window during which notes are hidden
// from retrieval output (spec.md §4.8, "audit mode"). A zero expires
// means "until explicitly turned off".
func (s *Store) SetAuditMode(on bool, expires time.Time) error {
	if !on {
		return s.setMeta("audit_mode", "off")
	}
	v := "on"
	if !expires.IsZero() {
		v = "on:" + expires.UTC().Format(time.RFC3339)
	}
	return s.setMeta("audit_mode", v)
}

// AuditMode reports whether notes are currently suppressed from
// retrieval output, expiring the window automatically once past
// the recorded deadline.
func (s *Store) AuditMode() (bool, error) {
	v, err := s.getMeta("audit_mode")
	if err != nil {
		return false, nil
	}
	if v == "off" || v == "" {
		return false, nil
	}
	if rest, ok := strings.CutPrefix(v, "on:"); ok {
		deadline := parseTimeStr(rest)
		if !deadline.IsZero() && time.Now().UTC().After(deadline) {
			return false, nil
		}
	}
	return true, nil
}
