// ABOUTME: Embedding interface shared by the vectorizer and its lookup tables.
// ABOUTME: Implementations map a single token to a fixed-dimension vector.
package embeddings

import "github.com/2389-research/dendro/internal/errors"

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed returns a vector embedding for the given text.
	Embed(text string) ([]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// MapEmbedder is an exact-match Embedder over an in-memory map.
// All vectors are expected to share one length.
type MapEmbedder map[string][]float32

// Embed returns the vector stored for text.
func (m MapEmbedder) Embed(text string) ([]float32, error) {
	if vec, ok := m[text]; ok {
		return vec, nil
	}
	return nil, errors.EmbeddingLookupf("no embedding for token %q", text)
}

// Dimension returns the length of the stored vectors, or 0 when empty.
func (m MapEmbedder) Dimension() int {
	for _, vec := range m {
		return len(vec)
	}
	return 0
}
