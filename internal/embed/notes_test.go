package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoteProviderAppendsSentimentCoordinate(t *testing.T) {
	inner := NewHashProvider(768)
	np := NewNoteProvider(inner)
	require.Equal(t, 769, np.Dimensions())

	vec, err := np.EmbedNote(context.Background(), "watch out for the off-by-one here", -1)
	require.NoError(t, err)
	require.Len(t, vec, 769)
	require.Equal(t, float32(-1), vec[768])
}
