package embed

import "context"

// NoteProvider wraps a Provider to produce D+1 dimensional vectors for
// notes, appending a bounded sentiment coordinate as the final dimension
// so that similarity search naturally clusters warnings near warnings
// and wins near wins.
type NoteProvider struct {
	inner Provider
}

func NewNoteProvider(inner Provider) *NoteProvider {
	return &NoteProvider{inner: inner}
}

func (n *NoteProvider) Dimensions() int { return n.inner.Dimensions() + 1 }
func (n *NoteProvider) ModelID() string { return n.inner.ModelID() }
func (n *NoteProvider) Close() error    { return n.inner.Close() }

// EmbedNote embeds a single note's text and appends its sentiment as the
// final coordinate. The caller supplies sentiment already validated
// against the closed {-1, -0.5, 0, 0.5, 1} set.
func (n *NoteProvider) EmbedNote(ctx context.Context, text string, sentiment float64) ([]float32, error) {
	vecs, err := n.inner.Embed(ctx, []string{text}, EmbedModePassage)
	if err != nil {
		return nil, err
	}
	return append(vecs[0], float32(sentiment)), nil
}
