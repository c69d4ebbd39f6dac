package chunk

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// ChunkID derives the stable, deterministic chunk identifier from
// origin+name+start_line+window_idx (spec.md §3 invariant i).
func ChunkID(origin, name string, startLine int, windowIdx *int) string {
	w := -1
	if windowIdx != nil {
		w = *windowIdx
	}
	raw := fmt.Sprintf("%s\x00%s\x00%d\x00%d", origin, name, startLine, w)
	sum := blake3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}

// ContentHash returns the blake3 digest of a chunk's content, used to
// drive the incremental re-embed decision in C5/C7 (spec.md §3 invariant
// iii, §8 property 2).
func ContentHash(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}
