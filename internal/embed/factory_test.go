package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderHash(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "hash"})
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 768, p.Dimensions())
}

func TestNewProviderHashCustomDimensions(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "hash", Dimensions: 32})
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 32, p.Dimensions())
}

func TestNewProviderUnsupported(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "not-a-thing"})
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestNewProviderLocalRequiresAssets(t *testing.T) {
	// The local backend refuses to start without an externally provisioned
	// script and site-packages directory rather than silently downloading
	// one.
	_, err := NewProvider(context.Background(), Config{Provider: "local"})
	assert.Error(t, err)
}
