// ABOUTME: Loads tabular text input (CSV, TSV, whitespace) into rows of tokens.
// ABOUTME: Keeps the header and supports extracting the rows of one cluster.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

// Input formats.
const (
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatSpace = "space"
)

// Table is a named sequence of rows with an optional header.
type Table struct {
	Name   string
	Header []string
	Rows   []models.Row
}

// Options controls how a table is parsed.
type Options struct {
	Format    string // csv, tsv, space; empty means detect from the file extension
	HasHeader bool
}

// Load reads a table from path. A path of "-" reads stdin.
func Load(path string, opts Options) (*Table, error) {
	if opts.Format == "" {
		opts.Format = DetectFormat(path)
	}

	var r io.Reader
	name := "stdin"
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open table: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	t, err := Parse(r, opts)
	if err != nil {
		return nil, err
	}
	t.Name = name
	return t, nil
}

// DetectFormat guesses the format from a file extension, defaulting to CSV.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".txt":
		return FormatSpace
	default:
		return FormatCSV
	}
}

// Parse reads rows from r. Blank lines are skipped in every format.
func Parse(r io.Reader, opts Options) (*Table, error) {
	var records [][]string
	var err error

	switch opts.Format {
	case FormatCSV, "":
		records, err = readDelimited(r, ',')
	case FormatTSV:
		records, err = readDelimited(r, '\t')
	case FormatSpace:
		records, err = readFields(r)
	default:
		return nil, errors.InvalidInputf("unknown table format %q", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	t := &Table{}
	if opts.HasHeader && len(records) > 0 {
		t.Header = records[0]
		records = records[1:]
	}
	t.Rows = make([]models.Row, 0, len(records))
	for _, rec := range records {
		t.Rows = append(t.Rows, models.Row(rec))
	}
	return t, nil
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if comma == '\t' {
		cr.LazyQuotes = true
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse table"), errors.ErrInvalidInput)
	}
	return records, nil
}

func readFields(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	var records [][]string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		records = append(records, fields)
	}
	return records, nil
}

// Labels returns the token at column col of every row.
func (t *Table) Labels(col int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Label(col)
	}
	return out
}

// SubTable returns a table holding only the rows at the given indices, in
// the order given. Out-of-range indices are an error.
func (t *Table) SubTable(indices []int) (*Table, error) {
	sub := &Table{Name: t.Name, Header: t.Header, Rows: make([]models.Row, 0, len(indices))}
	for _, idx := range indices {
		if idx < 0 || idx >= len(t.Rows) {
			return nil, errors.InvalidInputf("row index %d out of range [0,%d)", idx, len(t.Rows))
		}
		sub.Rows = append(sub.Rows, t.Rows[idx])
	}
	return sub, nil
}

// String renders the table in fixed-width columns.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("name: %s\n", t.Name))
	if len(t.Header) > 0 {
		for _, h := range t.Header {
			sb.WriteString(fmt.Sprintf("%-15s", h))
		}
		sb.WriteString("\n")
	}
	for _, row := range t.Rows {
		for _, item := range row {
			sb.WriteString(fmt.Sprintf("%-15s", item))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
