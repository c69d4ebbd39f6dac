// Package embed implements C4: batches of text in, unit-norm vectors out,
// at a fixed dimension recorded alongside the model identity in store
// metadata. Provisioning the model weights themselves is out of scope;
// this package implements the Provider contract, truncation, and
// batching around whatever backend is configured.
package embed

import "context"

// EmbedMode specifies the type of embedding to generate.
type EmbedMode string

const (
	// EmbedModeQuery generates embeddings optimized for search queries.
	// Use this when embedding user questions or search terms.
	EmbedModeQuery EmbedMode = "query"

	// EmbedModePassage generates embeddings optimized for document passages.
	// Use this when embedding code chunks, documentation, or any searchable content.
	EmbedModePassage EmbedMode = "passage"
)

// MaxInputBytes is the per-string truncation limit before embedding.
const MaxInputBytes = 10 * 1024 * 1024

// Provider defines the interface for embedding text into vectors.
// Implementations may use local models, remote APIs, or other embedding services.
type Provider interface {
	// Embed converts a slice of text strings into their vector representations.
	// The mode parameter specifies whether embeddings are for queries or passages.
	// Returns a slice of vectors where each vector is a slice of float32 values.
	Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error)

	// Dimensions returns the dimensionality of the embedding vectors produced by this provider.
	Dimensions() int

	// ModelID identifies the model, for comparison against stored metadata
	// when detecting a model mismatch.
	ModelID() string

	// Close releases any resources held by the provider.
	// For local providers, this may include stopping background processes.
	Close() error
}

// Truncate enforces the per-string input limit by keeping the leading
// bytes and dropping the tail, so a function's signature and opening
// lines survive even when its body doesn't.
func Truncate(s string) string {
	if len(s) <= MaxInputBytes {
		return s
	}
	return s[:MaxInputBytes]
}
