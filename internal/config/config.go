// Package config loads the project-scoped `.cqs.toml` configuration file:
// embedding provider settings, discovery ignore overrides, registered
// references, and RRF fusion weights. Grounded on the teacher's
// internal/config/config.go defaults-struct idiom, generalized from the
// teacher's doc/code path-pattern config to cqs's domain.
package config

// Config represents the complete cqs project configuration.
// It is loaded from .cqs.toml with environment variable overrides.
type Config struct {
	Embedding  EmbeddingConfig   `toml:"embedding" mapstructure:"embedding"`
	Ignore     []string          `toml:"ignore" mapstructure:"ignore"`
	References []ReferenceConfig `toml:"references" mapstructure:"references"`
	Weights    WeightsConfig     `toml:"weights" mapstructure:"weights"`
}

// EmbeddingConfig configures the embedding provider (internal/embed.Config).
type EmbeddingConfig struct {
	Provider   string `toml:"provider" mapstructure:"provider"` // "local" or "hash"
	Model      string `toml:"model" mapstructure:"model"`
	Dimensions int    `toml:"dimensions" mapstructure:"dimensions"`
}

// ReferenceConfig registers an external codebase to search alongside the
// primary project (C12). Name must be unique and is also the key used
// for its entry in WeightsConfig.References.
type ReferenceConfig struct {
	Name   string  `toml:"name" mapstructure:"name"`
	Path   string  `toml:"path" mapstructure:"path"`
	Weight float64 `toml:"weight" mapstructure:"weight"`
}

// WeightsConfig scales each result list's contribution to RRF fusion
// (spec.md §4.8 step 4) and how strongly notes are weighted once attached.
type WeightsConfig struct {
	Dense         float64            `toml:"dense" mapstructure:"dense"`
	Lexical       float64            `toml:"lexical" mapstructure:"lexical"`
	NoteThreshold float64            `toml:"note_threshold" mapstructure:"note_threshold"`
	NoteWeight    float64            `toml:"note_weight" mapstructure:"note_weight"`
	References    map[string]float64 `toml:"references" mapstructure:"references"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "local",
			Model:      "BAAI/bge-small-en-v1.5",
			Dimensions: 384,
		},
		Ignore: []string{},
		Weights: WeightsConfig{
			Dense:         1.0,
			Lexical:       1.0,
			NoteThreshold: 0,
			NoteWeight:    1.0,
		},
	}
}
