package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, 1.0, cfg.Weights.Dense)
	assert.Equal(t, 1.0, cfg.Weights.Lexical)
	require.NoError(t, Validate(cfg))
}

func TestLoadConfigUsesDefaultsWhenNoFileExists(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Empty(t, cfg.References)
}

func TestLoadConfigReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	toml := `
ignore = ["vendor/**"]

[embedding]
provider = "hash"
dimensions = 8

[[references]]
name = "stdlib"
path = "/opt/stdlib"
weight = 0.5

[weights]
dense = 2.0
lexical = 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cqs.toml"), []byte(toml), 0o644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "hash", cfg.Embedding.Provider)
	assert.Equal(t, 8, cfg.Embedding.Dimensions)
	assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
	require.Len(t, cfg.References, 1)
	assert.Equal(t, "stdlib", cfg.References[0].Name)
	assert.Equal(t, 0.5, cfg.References[0].Weight)
	assert.Equal(t, 2.0, cfg.Weights.Dense)
	assert.Equal(t, 0.5, cfg.Weights.Lexical)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cqs.toml"), []byte(`
[embedding]
provider = "local"
`), 0o644))

	t.Setenv("CQS_EMBEDDING_PROVIDER", "hash")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "hash", cfg.Embedding.Provider)
}

func TestLoadConfigRejectsInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cqs.toml"), []byte(`
[embedding]
provider = "bogus"
`), 0o644))

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
}

func TestValidateRejectsInvalidProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "bogus"
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProvider)
}

func TestValidateRejectsNegativeDimensions(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Dimensions = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestValidateRejectsEmptyModelForLocalProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Model = ""
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyModel)
}

func TestValidateRejectsDuplicateReferenceNames(t *testing.T) {
	cfg := Default()
	cfg.References = []ReferenceConfig{
		{Name: "stdlib", Path: "/a", Weight: 1},
		{Name: "stdlib", Path: "/b", Weight: 1},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestValidateRejectsNegativeWeights(t *testing.T) {
	cfg := Default()
	cfg.Weights.Dense = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestValidateReturnsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "bogus"
	cfg.Weights.Dense = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
