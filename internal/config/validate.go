package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider indicates an unsupported embedding provider
	ErrInvalidProvider = errors.New("invalid embedding provider")

	// ErrInvalidDimensions indicates invalid embedding dimensions
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")

	// ErrEmptyModel indicates missing embedding model
	ErrEmptyModel = errors.New("empty embedding model")

	// ErrInvalidReference indicates a malformed registered reference
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidWeight indicates a negative RRF or note weight
	ErrInvalidWeight = errors.New("invalid weight")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEmbedding(&cfg.Embedding); err != nil {
		errs = append(errs, err)
	}
	if err := validateReferences(cfg.References); err != nil {
		errs = append(errs, err)
	}
	if err := validateWeights(&cfg.Weights); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateEmbedding(cfg *EmbeddingConfig) error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if provider != "local" && provider != "hash" {
		errs = append(errs, fmt.Errorf("%w: must be 'local' or 'hash', got '%s'", ErrInvalidProvider, cfg.Provider))
	}

	if provider == "local" && strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required for the local provider", ErrEmptyModel))
	}

	if cfg.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("%w: dimensions cannot be negative, got %d", ErrInvalidDimensions, cfg.Dimensions))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateReferences(refs []ReferenceConfig) error {
	var errs []error
	seen := make(map[string]bool, len(refs))

	for _, r := range refs {
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Errorf("%w: name is required", ErrInvalidReference))
			continue
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate reference name %q", ErrInvalidReference, r.Name))
		}
		seen[r.Name] = true

		if strings.TrimSpace(r.Path) == "" {
			errs = append(errs, fmt.Errorf("%w: reference %q has an empty path", ErrInvalidReference, r.Name))
		}
		if r.Weight < 0 {
			errs = append(errs, fmt.Errorf("%w: reference %q has a negative weight", ErrInvalidWeight, r.Name))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateWeights(w *WeightsConfig) error {
	var errs []error

	if w.Dense < 0 {
		errs = append(errs, fmt.Errorf("%w: dense weight cannot be negative", ErrInvalidWeight))
	}
	if w.Lexical < 0 {
		errs = append(errs, fmt.Errorf("%w: lexical weight cannot be negative", ErrInvalidWeight))
	}
	if w.NoteThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: note_threshold cannot be negative", ErrInvalidWeight))
	}
	if w.NoteWeight < 0 {
		errs = append(errs, fmt.Errorf("%w: note_weight cannot be negative", ErrInvalidWeight))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
