// ABOUTME: Converts rows of tokens into equal-length numeric vectors.
// ABOUTME: Embeds one label column per row and zero-pads to the longest vector.
package embeddings

import (
	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

// OOV policies decide what happens to tokens the embedder does not know.
const (
	OOVError = "error"
	OOVZero  = "zero"
)

// VectorizeOptions configures Vectorize.
type VectorizeOptions struct {
	Column int    // token position to embed; 0 is the first item of the row
	OOV    string // OOVError (default) or OOVZero
}

// Vectorize embeds rows[i][opts.Column] for every row and right-pads each
// vector with zeros to the longest length seen. Only the chosen column is
// embedded; the rest of the row is ignored.
func Vectorize(rows []models.Row, emb Embedder, opts VectorizeOptions) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, errors.WithHint(errors.InvalidInputf("no rows to vectorize"), "pass at least one row")
	}
	if emb == nil {
		return nil, errors.InvalidInputf("embedder is required")
	}
	if opts.Column < 0 {
		return nil, errors.InvalidInputf("column must be >= 0, got %d", opts.Column)
	}
	switch opts.OOV {
	case "", OOVError, OOVZero:
	default:
		return nil, errors.InvalidInputf("unknown oov policy %q", opts.OOV)
	}

	out := make([][]float64, len(rows))
	maxLen := 0
	for i, row := range rows {
		if len(row) == 0 {
			return nil, errors.InvalidInputf("row %d has no tokens", i)
		}
		if opts.Column >= len(row) {
			return nil, errors.InvalidInputf("row %d has %d tokens, column %d requested", i, len(row), opts.Column)
		}

		vec, err := emb.Embed(row[opts.Column])
		if err != nil {
			if opts.OOV != OOVZero || !errors.Is(err, errors.ErrEmbeddingLookup) {
				return nil, errors.Wrapf(err, "vectorize row %d", i)
			}
			vec = make([]float32, emb.Dimension())
		}

		line := make([]float64, len(vec))
		for j, v := range vec {
			line[j] = float64(v)
		}
		out[i] = line
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	for i, line := range out {
		if len(line) < maxLen {
			padded := make([]float64, maxLen)
			copy(padded, line)
			out[i] = padded
		}
	}
	return out, nil
}
