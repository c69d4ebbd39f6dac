package chunk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jamie8johnson/cqs/internal/model"
)

const goFixture = `package lib

func b() {}

func a() {
	b()
}
`

func TestGoChunkerExtractsFunctionsAndCalls(t *testing.T) {
	c := NewGoChunker()
	result, err := c.Chunk("file:src/lib.go", "go", []byte(goFixture), time.Now())
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)

	names := map[string]bool{}
	for _, ch := range result.Chunks {
		names[ch.Name] = true
		require.Equal(t, model.KindFunction, ch.Kind)
		require.NotEmpty(t, ch.ContentHash)
	}
	require.True(t, names["a"])
	require.True(t, names["b"])

	require.Len(t, result.Calls, 1)
	require.Equal(t, "a", result.Calls[0].CallerName)
	require.Equal(t, "b", result.Calls[0].CalleeName)
}

func TestGoChunkerDegradesOnParseError(t *testing.T) {
	c := NewGoChunker()
	result, err := c.Chunk("file:broken.go", "go", []byte("this is not valid go {{{"), time.Now())
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	require.Equal(t, model.KindSection, result.Chunks[0].Kind)
}

func TestContentHashStableAcrossUnchangedInput(t *testing.T) {
	h1 := ContentHash([]byte(goFixture))
	h2 := ContentHash([]byte(goFixture))
	require.Equal(t, h1, h2)
}

func TestBuildChunksWindowsOversizedSpans(t *testing.T) {
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = "x"
	}
	chunks := buildChunks("file:big.go", "go", "huge", model.KindFunction, 1, 150, lines, time.Now(), time.Now())
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		require.NotEmpty(t, ch.ParentID)
		require.Equal(t, chunks[0].ParentID, ch.ParentID)
		require.NotNil(t, ch.WindowIdx)
		require.Equal(t, i, *ch.WindowIdx)
	}
}
