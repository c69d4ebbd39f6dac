package vectorindex

import "path/filepath"

// Store pairs the code-chunk index (dimension D) with the note index
// (dimension D+1), the two namespaces spec.md §9 resolves the
// sentiment-augmented embedding question into.
type Store struct {
	Chunks *Index
	Notes  *Index
	dir    string
}

// Open loads persisted chunk/note indexes from dir if present, or creates
// empty ones at the given dimensions otherwise.
func Open(dir string, chunkDim, noteDim int) (*Store, error) {
	chunkPath := filepath.Join(dir, "chunks.hnsw")
	notePath := filepath.Join(dir, "notes.hnsw")

	chunks := New(chunkDim)
	if Exists(chunkPath) {
		loaded, err := Load(chunkPath)
		if err != nil {
			return nil, err
		}
		chunks = loaded
	}

	notes := New(noteDim)
	if Exists(notePath) {
		loaded, err := Load(notePath)
		if err != nil {
			return nil, err
		}
		notes = loaded
	}

	return &Store{Chunks: chunks, Notes: notes, dir: dir}, nil
}

// Save persists both namespaces.
func (s *Store) Save() error {
	if err := s.Chunks.Save(filepath.Join(s.dir, "chunks.hnsw")); err != nil {
		return err
	}
	return s.Notes.Save(filepath.Join(s.dir, "notes.hnsw"))
}
