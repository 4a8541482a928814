// ABOUTME: End-to-end tests for the clustering pipeline on toy embeddings.
// ABOUTME: Covers the four-word scenario, boundaries, idempotence, and error kinds.
package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/dendro/internal/embeddings"
	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/linkage"
	"github.com/2389-research/dendro/internal/models"
)

func toyEmbedder(t *testing.T) *embeddings.Table {
	t.Helper()
	tbl, err := embeddings.NewTable(map[string][]float32{
		"cat":   {0, 0},
		"dog":   {0, 1},
		"car":   {10, 0},
		"truck": {10, 1},
		"x":     {5, 5},
	})
	require.NoError(t, err)
	return tbl
}

var fourRows = []models.Row{{"cat", "x"}, {"dog", "y"}, {"car", "z"}, {"truck", "w"}}

func TestRunFourWords(t *testing.T) {
	res, err := Run(context.Background(), fourRows, Options{Embedder: toyEmbedder(t), EmbeddingDim: 2, TopK: 3})
	require.NoError(t, err)

	assert.Equal(t, linkage.Ward, res.Method)
	require.Len(t, res.Merges, 3)
	assert.InDelta(t, 1, res.Merges[0].Distance, 1e-12)
	assert.InDelta(t, 1, res.Merges[1].Distance, 1e-12)
	assert.InDelta(t, math.Sqrt(200), res.Merges[2].Distance, 1e-9)

	assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1}, {2, 3}}, res.MemberSets())
	assert.Equal(t, 6, res.Clusters[0].Node)
	for _, c := range res.Clusters {
		assert.True(t, c.Cohesion >= 0 && c.Cohesion <= 1+1e-9)
	}
}

func TestRunMapEmbedder(t *testing.T) {
	emb := embeddings.MapEmbedder{"cat": {0, 0}, "dog": {0, 1}, "car": {10, 0}, "truck": {10, 1}}
	res, err := Run(context.Background(), fourRows, Options{Embedder: emb, EmbeddingDim: 2, TopK: 3})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1}, {2, 3}}, res.MemberSets())

	_, err = Run(context.Background(), []models.Row{{"cat"}, {"Dog"}}, Options{Embedder: emb})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmbeddingLookup))
}

func TestRunDefaultsToTopFive(t *testing.T) {
	res, err := Run(context.Background(), fourRows, Options{Embedder: toyEmbedder(t)})
	require.NoError(t, err)

	assert.Equal(t, 5, res.TopK)
	assert.Equal(t, models.StrategySignificant, res.Strategy)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1}, {2, 3}, {0}, {1}}, res.MemberSets())
}

func TestRunTwoRows(t *testing.T) {
	rows := []models.Row{{"cat"}, {"car"}}
	res, err := Run(context.Background(), rows, Options{Embedder: toyEmbedder(t)})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {0}, {1}}, res.MemberSets())
}

func TestRunSingleRow(t *testing.T) {
	res, err := Run(context.Background(), []models.Row{{"cat"}}, Options{Embedder: toyEmbedder(t)})
	require.NoError(t, err)
	assert.Empty(t, res.Merges)
	assert.Equal(t, [][]int{{0}}, res.MemberSets())
}

func TestRunCutStrategy(t *testing.T) {
	res, err := Run(context.Background(), fourRows, Options{
		Embedder: toyEmbedder(t),
		TopK:     2,
		Strategy: models.StrategyCut,
	})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}}, res.MemberSets())
}

func TestRunIdempotent(t *testing.T) {
	rows := []models.Row{{"cat"}, {"x"}, {"truck"}, {"dog"}, {"car"}, {"X"}}
	opts := Options{Embedder: toyEmbedder(t), TopK: 4}

	a, err := Run(context.Background(), rows, opts)
	require.NoError(t, err)
	b, err := Run(context.Background(), rows, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Merges, b.Merges)
	assert.Equal(t, a.Clusters, b.Clusters)
}

func TestRunOtherMethods(t *testing.T) {
	for _, m := range []string{"single", "complete", "average"} {
		res, err := Run(context.Background(), fourRows, Options{Embedder: toyEmbedder(t), Method: m, TopK: 3})
		require.NoError(t, err, m)
		assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1}, {2, 3}}, res.MemberSets(), m)
	}
}

func TestRunZeroVectorPolicy(t *testing.T) {
	rows := []models.Row{{"cat"}, {"unicorn"}, {"car"}}
	_, err := Run(context.Background(), rows, Options{Embedder: toyEmbedder(t)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmbeddingLookup))

	res, err := Run(context.Background(), rows, Options{Embedder: toyEmbedder(t), OOV: embeddings.OOVZero})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, res.Vectors[1])
}

func TestRunInvalidInput(t *testing.T) {
	emb := toyEmbedder(t)
	tests := []struct {
		name string
		rows []models.Row
		opts Options
	}{
		{"no rows", nil, Options{Embedder: emb}},
		{"empty row", []models.Row{{"cat"}, {}}, Options{Embedder: emb}},
		{"no embedder", fourRows, Options{}},
		{"dim mismatch", fourRows, Options{Embedder: emb, EmbeddingDim: 50}},
		{"negative dim", fourRows, Options{Embedder: emb, EmbeddingDim: -1}},
		{"negative k", fourRows, Options{Embedder: emb, TopK: -2}},
		{"unknown method", fourRows, Options{Embedder: emb, Method: "centroid"}},
		{"unknown strategy", fourRows, Options{Embedder: emb, Strategy: "random"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.rows, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, fourRows, Options{Embedder: toyEmbedder(t)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultReport(t *testing.T) {
	res, err := Run(context.Background(), fourRows, Options{Embedder: toyEmbedder(t), TopK: 3})
	require.NoError(t, err)

	rep := res.Report("words.csv", fourRows, 0)
	assert.Equal(t, "words.csv", rep.Source)
	assert.Equal(t, "ward", rep.Method)
	assert.Equal(t, 3, rep.TopK)
	assert.Equal(t, []string{"cat", "dog", "car", "truck"}, rep.Labels)
	assert.Equal(t, []string{"car", "truck"}, rep.MemberLabels(rep.Clusters[2]))
	assert.Len(t, rep.Merges, 3)
}
