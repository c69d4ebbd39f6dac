package store

import (
	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/model"
)

// CalleesOf returns every call site where callerName is the caller,
// falling back to function_calls for call sites whose enclosing chunk got
// split by windowing (model.Call.ChunkID empty) and so never reached the
// narrower calls table.
func (s *Store) CalleesOf(callerName string) ([]model.Call, error) {
	return s.queryCalls("caller_name", callerName)
}

// CallersOf returns every call site where calleeName is the callee.
func (s *Store) CallersOf(calleeName string) ([]model.Call, error) {
	return s.queryCalls("callee_name", calleeName)
}

func (s *Store) queryCalls(matchCol, value string) ([]model.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT chunk_id, caller_name, callee_name, origin, line FROM calls WHERE `+matchCol+` = ?
		UNION ALL
		SELECT '', caller_name, callee_name, origin, line FROM function_calls WHERE `+matchCol+` = ?
	`, value, value)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.queryCalls", err)
	}
	defer rows.Close()

	var out []model.Call
	for rows.Next() {
		var c model.Call
		if err := rows.Scan(&c.ChunkID, &c.CallerName, &c.CalleeName, &c.Origin, &c.Line); err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.queryCalls", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllCallNames returns every distinct function name that appears as
// either a caller or a callee, for dead-code detection (a chunk whose
// Name never appears as a callee has zero callers).
func (s *Store) AllCallNames() (callers map[string]bool, callees map[string]bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	callers = map[string]bool{}
	callees = map[string]bool{}
	rows, err := s.db.Query(`
		SELECT caller_name, callee_name FROM calls
		UNION ALL
		SELECT caller_name, callee_name FROM function_calls
	`)
	if err != nil {
		return nil, nil, cqserr.New(cqserr.Unknown, "store.AllCallNames", err)
	}
	defer rows.Close()
	for rows.Next() {
		var caller, callee string
		if err := rows.Scan(&caller, &callee); err != nil {
			return nil, nil, cqserr.New(cqserr.Unknown, "store.AllCallNames", err)
		}
		callers[caller] = true
		callees[callee] = true
	}
	return callers, callees, rows.Err()
}

// TypeEdgesByTarget returns every edge referencing targetType.
func (s *Store) TypeEdgesByTarget(targetType string) ([]model.TypeEdge, error) {
	return s.queryTypeEdges("target_type_name", targetType)
}

// TypeEdgesByChunk returns every type reference a chunk makes, for the
// `deps --reverse` direction.
func (s *Store) TypeEdgesByChunk(chunkID string) ([]model.TypeEdge, error) {
	return s.queryTypeEdges("chunk_id", chunkID)
}

// ImplementorChunkIDs returns the set of chunk ids that declare an
// EdgeImpl type edge (a trait/interface method implementation), for
// Dead's conservative exclusion of implementations from its High tier.
func (s *Store) ImplementorChunkIDs() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT DISTINCT chunk_id FROM type_edges WHERE kind = ?", string(model.EdgeImpl))
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.ImplementorChunkIDs", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.ImplementorChunkIDs", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *Store) queryTypeEdges(matchCol, value string) ([]model.TypeEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT chunk_id, target_type_name, kind, origin, line FROM type_edges WHERE `+matchCol+` = ?`, value)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.queryTypeEdges", err)
	}
	defer rows.Close()

	var out []model.TypeEdge
	for rows.Next() {
		var e model.TypeEdge
		var kind string
		if err := rows.Scan(&e.ChunkID, &e.TargetTypeName, &kind, &e.Origin, &e.Line); err != nil {
			return nil, cqserr.New(cqserr.Unknown, "store.queryTypeEdges", err)
		}
		e.Kind = model.EdgeKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllChunks returns every chunk, for whole-graph traversals (dead code,
// test-map) that need to scan by name pattern rather than by origin.
func (s *Store) AllChunks() ([]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(chunkSelectColumns)
	if err != nil {
		return nil, cqserr.New(cqserr.Unknown, "store.AllChunks", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}
