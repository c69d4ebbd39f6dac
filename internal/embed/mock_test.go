package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProviderDeterministic(t *testing.T) {
	p := NewHashProvider(768)
	ctx := context.Background()

	v1, err := p.Embed(ctx, []string{"func foo() {}"}, EmbedModePassage)
	require.NoError(t, err)
	v2, err := p.Embed(ctx, []string{"func foo() {}"}, EmbedModePassage)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1[0], 768)
}

func TestHashProviderUnitNorm(t *testing.T) {
	p := NewHashProvider(768)
	vecs, err := p.Embed(context.Background(), []string{"some text"}, EmbedModeQuery)
	require.NoError(t, err)

	var sumSq float64
	for _, x := range vecs[0] {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-4)
}

func TestHashProviderModeAffectsOutput(t *testing.T) {
	p := NewHashProvider(768)
	ctx := context.Background()
	q, err := p.Embed(ctx, []string{"widget"}, EmbedModeQuery)
	require.NoError(t, err)
	passage, err := p.Embed(ctx, []string{"widget"}, EmbedModePassage)
	require.NoError(t, err)
	assert.NotEqual(t, q[0], passage[0])
}

func TestHashProviderCloseTracksState(t *testing.T) {
	p := NewHashProvider(768)
	assert.False(t, p.IsClosed())
	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())
}
