// ABOUTME: Embedding table validation for the setup wizard.
// ABOUTME: Parses the head of the table file and checks its vector dimension.
package tui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/2389-research/dendro/internal/config"
	"github.com/2389-research/dendro/internal/embeddings"
)

// validateLines is how many lines of the table are parsed.
const validateLines = 200

// ValidateEmbeddings checks that path holds a readable embedding table and
// returns its dimension. A positive dim must match the table.
// The context allows cancellation when the user quits during validation.
func ValidateEmbeddings(ctx context.Context, path string, dim int) (int, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return 0, fmt.Errorf("cannot open embedding table: %w", err)
	}
	defer func() { _ = f.Close() }()

	var head strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for n := 0; n < validateLines && scanner.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		head.WriteString(scanner.Text())
		head.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read embedding table: %w", err)
	}

	tbl, err := embeddings.ReadTable(strings.NewReader(head.String()))
	if err != nil {
		return 0, err
	}
	if tbl.Len() == 0 {
		return 0, fmt.Errorf("embedding table %s is empty", path)
	}
	if dim > 0 && tbl.Dimension() != dim {
		return tbl.Dimension(), fmt.Errorf("table has dimension %d, expected %d", tbl.Dimension(), dim)
	}
	return tbl.Dimension(), nil
}
