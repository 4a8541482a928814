// ABOUTME: Pretrained word-vector table in the GloVe text format.
// ABOUTME: Looks tokens up by exact case first, then lower case.
package embeddings

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/2389-research/dendro/internal/errors"
)

const tableHint = "pass --embeddings <file> or run 'dendro setup' to choose a GloVe text file"

// Table is an in-memory token -> vector lookup.
type Table struct {
	vectors           map[string][]float32
	dim               int
	lowerCaseFallback bool
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithLowerCaseFallback toggles the lower-case retry for tokens missing in exact case.
func WithLowerCaseFallback(enabled bool) TableOption {
	return func(t *Table) {
		t.lowerCaseFallback = enabled
	}
}

// NewTable builds a table from a map. All vectors must share one length.
func NewTable(vectors map[string][]float32, opts ...TableOption) (*Table, error) {
	t := &Table{vectors: make(map[string][]float32, len(vectors)), lowerCaseFallback: true}
	for _, opt := range opts {
		opt(t)
	}
	for word, vec := range vectors {
		if err := t.add(word, vec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadTable reads a GloVe text file ("word v1 v2 ... vd" per line).
func LoadTable(path string, opts ...TableOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to open embedding table"),
			tableHint)
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f, opts...)
}

// ReadTable parses GloVe text from r. The dimension is taken from the first
// non-empty line. Tokens may contain spaces; the trailing dim fields are the vector.
func ReadTable(r io.Reader, opts ...TableOption) (*Table, error) {
	t, err := NewTable(nil, opts...)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		dim := t.dim
		if dim == 0 {
			dim = len(fields) - 1
		}
		if dim < 1 || len(fields) <= dim {
			return nil, errors.InvalidInputf("embedding table line %d: expected a token and %d values", lineNo, dim)
		}
		split := len(fields) - dim
		vec := make([]float32, dim)
		for i, raw := range fields[split:] {
			v, err := strconv.ParseFloat(raw, 32)
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "embedding table line %d", lineNo), errors.ErrInvalidInput)
			}
			vec[i] = float32(v)
		}
		word := strings.Join(fields[:split], " ")
		if err := t.add(word, vec); err != nil {
			return nil, errors.Wrapf(err, "embedding table line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to read embedding table"),
			tableHint)
	}
	return t, nil
}

func (t *Table) add(word string, vec []float32) error {
	if len(vec) == 0 {
		return errors.InvalidInputf("empty vector for %q", word)
	}
	if t.dim == 0 {
		t.dim = len(vec)
	}
	if len(vec) != t.dim {
		return errors.InvalidInputf("vector for %q has %d values, table has %d", word, len(vec), t.dim)
	}
	t.vectors[word] = vec
	return nil
}

// Embed returns the vector for token. A miss in exact case retries in lower
// case when the fallback is enabled. Returned slices must not be modified.
func (t *Table) Embed(token string) ([]float32, error) {
	if vec, ok := t.vectors[token]; ok {
		return vec, nil
	}
	if t.lowerCaseFallback {
		if vec, ok := t.vectors[strings.ToLower(token)]; ok {
			return vec, nil
		}
	}
	return nil, errors.EmbeddingLookupf("no embedding for token %q", token)
}

// Dimension returns the vector length, 0 for an empty table.
func (t *Table) Dimension() int {
	return t.dim
}

// Len returns the vocabulary size.
func (t *Table) Len() int {
	return len(t.vectors)
}
