package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// HashProvider is a deterministic, dependency-free embedding backend: it
// hashes each input string and spreads the digest across the configured
// dimension, then unit-normalizes. It produces no semantic structure —
// it exists so indexing, retrieval, and CI can run without the local
// Python runtime, exactly the role the teacher's MockProvider plays.
type HashProvider struct {
	mu         sync.Mutex
	dimensions int
	model      string

	closeCalled bool
	closeError  error
	embedError  error
}

// NewHashProvider creates a deterministic embedding provider at the given
// dimension (pass 768 to match the local backend's default).
func NewHashProvider(dimensions int) *HashProvider {
	return &HashProvider{dimensions: dimensions, model: "hash-v1"}
}

func (p *HashProvider) SetCloseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeError = err
}

func (p *HashProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedError = err
}

func (p *HashProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.embedError != nil {
		return nil, p.embedError
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashVector(string(mode)+"\x00"+Truncate(text), p.dimensions)
	}
	return out, nil
}

// hashVector expands a sha256 digest into a unit-norm vector by reseeding
// the hash with a counter for every 8 floats it needs to fill.
func hashVector(text string, dims int) []float32 {
	v := make([]float32, dims)
	var block [4]byte
	var blockIdx uint32
	var digest [32]byte
	for j := 0; j < dims; j++ {
		if j%8 == 0 {
			binary.BigEndian.PutUint32(block[:], blockIdx)
			blockIdx++
			digest = sha256.Sum256(append([]byte(text+"\x00"), block[:]...))
		}
		offset := (j % 8) * 4
		bits := binary.BigEndian.Uint32(digest[offset : offset+4])
		v[j] = (float32(bits)/float32(1<<32))*2.0 - 1.0
	}
	normalize(v)
	return v
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func (p *HashProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

func (p *HashProvider) ModelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

func (p *HashProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalled = true
	return p.closeError
}

func (p *HashProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalled
}
