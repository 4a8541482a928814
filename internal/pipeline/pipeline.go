// ABOUTME: The clustering pipeline: vectorize rows, build the linkage, select clusters.
// ABOUTME: One synchronous call; all intermediate structures are local to the call.
package pipeline

import (
	"context"

	"github.com/2389-research/dendro/internal/embeddings"
	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/linkage"
	"github.com/2389-research/dendro/internal/logger"
	"github.com/2389-research/dendro/internal/models"
	"github.com/2389-research/dendro/internal/tree"
)

// Options configures Run. Zero values pick the defaults: Ward linkage,
// top 5, significant selection, first column, OOV tokens are an error.
type Options struct {
	Embedder     embeddings.Embedder
	EmbeddingDim int // expected embedder dimension; 0 skips the check
	Method       string
	TopK         int
	Strategy     string
	Column       int
	OOV          string
}

// Result holds everything one run produced.
type Result struct {
	Method   linkage.Method
	Strategy string
	TopK     int
	Vectors  [][]float64
	Merges   []models.Merge
	Tree     *tree.Tree
	Clusters []models.Cluster
}

func (o *Options) normalize() error {
	if o.Embedder == nil {
		return errors.InvalidInputf("an embedder is required")
	}
	if o.EmbeddingDim < 0 {
		return errors.InvalidInputf("embedding dimension must be >= 0, got %d", o.EmbeddingDim)
	}
	if o.EmbeddingDim > 0 && o.Embedder.Dimension() != o.EmbeddingDim {
		return errors.WithHintf(
			errors.InvalidInputf("embedder has dimension %d, expected %d", o.Embedder.Dimension(), o.EmbeddingDim),
			"check the embeddings path and dim settings")
	}
	if o.TopK == 0 {
		o.TopK = tree.DefaultTopK
	}
	if o.TopK < 0 {
		return errors.InvalidInputf("top-k must be positive, got %d", o.TopK)
	}
	if o.Strategy == "" {
		o.Strategy = models.StrategySignificant
	}
	if !models.IsValidStrategy(o.Strategy) {
		return errors.InvalidInputf("unknown selection strategy %q", o.Strategy)
	}
	if o.OOV == "" {
		o.OOV = embeddings.OOVError
	}
	return nil
}

// Run clusters rows and returns the selected clusters with the merge tree.
// The context is checked between phases; no phase is interrupted midway.
func Run(ctx context.Context, rows []models.Row, opts Options) (*Result, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	method, err := linkage.ParseMethod(opts.Method)
	if err != nil {
		return nil, err
	}
	log := logger.Logger.With("method", string(method), "top_k", opts.TopK, "strategy", opts.Strategy)

	vectors, err := embeddings.Vectorize(rows, opts.Embedder, embeddings.VectorizeOptions{
		Column: opts.Column,
		OOV:    opts.OOV,
	})
	if err != nil {
		return nil, err
	}
	log.Debugw("vectorized rows", "rows", len(vectors), "dim", len(vectors[0]))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merges, err := linkage.Build(vectors, method)
	if err != nil {
		return nil, errors.Wrap(err, "linkage")
	}
	log.Debugw("built linkage", "merges", len(merges))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := tree.Index(merges, len(rows))
	if err != nil {
		return nil, errors.Wrap(err, "index merge tree")
	}
	clusters, err := t.Select(opts.Strategy, opts.TopK)
	if err != nil {
		return nil, err
	}
	for i := range clusters {
		clusters[i].Cohesion = embeddings.Cohesion(vectors, clusters[i].Members)
	}
	log.Debugw("selected clusters", "selected", len(clusters))

	return &Result{
		Method:   method,
		Strategy: opts.Strategy,
		TopK:     opts.TopK,
		Vectors:  vectors,
		Merges:   merges,
		Tree:     t,
		Clusters: clusters,
	}, nil
}

// Report packages a result for storage, labelling rows by column col.
func (r *Result) Report(source string, rows []models.Row, col int) *models.Report {
	rep := models.NewReport(source, string(r.Method), r.Strategy, r.TopK)
	rep.Labels = make([]string, len(rows))
	for i, row := range rows {
		rep.Labels[i] = row.Label(col)
	}
	rep.Merges = r.Merges
	rep.Clusters = r.Clusters
	return rep
}

// MemberSets returns the member rows of each selected cluster.
func (r *Result) MemberSets() [][]int {
	out := make([][]int, len(r.Clusters))
	for i, c := range r.Clusters {
		out[i] = c.Members
	}
	return out
}
