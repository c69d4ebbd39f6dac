package embed

import (
	"context"
	"fmt"
)

// Config selects and parameterizes an embedding provider.
type Config struct {
	// Provider names the backend: "local", "hash", or empty (defaults to
	// "local").
	Provider string

	// Local backend settings, used when Provider == "local".
	RuntimeDir      string
	SitePackagesDir string
	ScriptPath      string
	Port            int
	Persist         bool

	Model      string
	Dimensions int
}

// NewProvider constructs a Provider from Config and, for the local
// backend, initializes the embedded interpreter before returning.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch config.Provider {
	case "local", "":
		p, err := newLocalProvider(LocalConfig{
			RuntimeDir:      config.RuntimeDir,
			SitePackagesDir: config.SitePackagesDir,
			ScriptPath:      config.ScriptPath,
			Port:            config.Port,
			Persist:         config.Persist,
			Model:           config.Model,
			Dimensions:      config.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		if err := p.Initialize(ctx); err != nil {
			return nil, err
		}
		return p, nil

	case "hash":
		dims := config.Dimensions
		if dims == 0 {
			dims = 768
		}
		return NewHashProvider(dims), nil

	default:
		return nil, fmt.Errorf("embed: unsupported provider %q (supported: local, hash)", config.Provider)
	}
}
