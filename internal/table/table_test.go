// ABOUTME: Tests for table loading in each input format.
// ABOUTME: Covers header handling, format detection, and sub-table extraction.
package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

func TestParseCSVWithHeader(t *testing.T) {
	in := "animal,sound\ncat,meow\ndog,woof\n\ncow,moo\n"
	tbl, err := Parse(strings.NewReader(in), Options{Format: FormatCSV, HasHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"animal", "sound"}, tbl.Header)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, models.Row{"cow", "moo"}, tbl.Rows[2])
	assert.Equal(t, []string{"cat", "dog", "cow"}, tbl.Labels(0))
}

func TestParseTSVRaggedRows(t *testing.T) {
	in := "cat\tx\ndog\ntruck\tw\tz\n"
	tbl, err := Parse(strings.NewReader(in), Options{Format: FormatTSV})
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, models.Row{"dog"}, tbl.Rows[1])
	assert.Len(t, tbl.Rows[2], 3)
	assert.Nil(t, tbl.Header)
}

func TestParseSpaceSkipsBlankLines(t *testing.T) {
	in := "cat  x\n   \ndog y\n"
	tbl, err := Parse(strings.NewReader(in), Options{Format: FormatSpace})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, tbl.Labels(0))
	assert.Equal(t, []string{"x", "y"}, tbl.Labels(1))
	assert.Equal(t, []string{"", ""}, tbl.Labels(5))
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse(strings.NewReader("a"), Options{Format: "xlsx"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestParseMalformedCSV(t *testing.T) {
	_, err := Parse(strings.NewReader("\"unterminated,a\n"), Options{Format: FormatCSV})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("words.csv"))
	assert.Equal(t, FormatTSV, DetectFormat("words.TSV"))
	assert.Equal(t, FormatSpace, DetectFormat("words.txt"))
	assert.Equal(t, FormatCSV, DetectFormat("words"))
}

func TestLoadNamesTableAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.csv")
	require.NoError(t, os.WriteFile(path, []byte("car,z\ntruck,w\n"), 0600))

	tbl, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "vehicles", tbl.Name)
	assert.Len(t, tbl.Rows, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.Error(t, err)
}

func TestSubTable(t *testing.T) {
	tbl := &Table{
		Name:   "t",
		Header: []string{"w"},
		Rows:   []models.Row{{"cat"}, {"dog"}, {"car"}, {"truck"}},
	}
	sub, err := tbl.SubTable([]int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"car", "truck"}, sub.Labels(0))
	assert.Equal(t, tbl.Header, sub.Header)
	assert.Contains(t, sub.String(), "truck")

	_, err = tbl.SubTable([]int{4})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
