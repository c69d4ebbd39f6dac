package config

import "github.com/jamie8johnson/cqs/internal/embed"

// ToEmbedConfig converts the embedding section of Config into an
// internal/embed.Config ready for embed.NewProvider.
func (c *Config) ToEmbedConfig() embed.Config {
	return embed.Config{
		Provider:   c.Embedding.Provider,
		Model:      c.Embedding.Model,
		Dimensions: c.Embedding.Dimensions,
	}
}

// IgnoreOverrides returns the project's additional discovery ignore globs,
// passed to indexer.NewDiscovery alongside .gitignore.
func (c *Config) IgnoreOverrides() []string {
	return c.Ignore
}

// ReferenceWeight returns the RRF weight set for a reference by name in
// the [weights] section of .cqs.toml, and whether one is set. It does not
// consult the weight stored in the reference's own manifest.
func (c *Config) ReferenceWeight(name string) (float64, bool) {
	w, ok := c.Weights.References[name]
	return w, ok
}
