package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeEmbedding serializes a float32 vector to little-endian bytes for
// a SQLite BLOB column, same layout as the teacher's SerializeEmbedding.
func encodeEmbedding(emb []float32) []byte {
	out := make([]byte, len(emb)*4)
	for i, f := range emb {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func decodeEmbedding(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("store: embedding blob length %d not divisible by 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}
