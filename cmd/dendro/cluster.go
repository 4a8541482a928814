// ABOUTME: CLI command that clusters the rows of a table file.
// ABOUTME: Prints the selected clusters and optionally exports a dendrogram or saves a report.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/dendro/internal/dendrogram"
	"github.com/2389-research/dendro/internal/logger"
	"github.com/2389-research/dendro/internal/pipeline"
	"github.com/2389-research/dendro/internal/table"
	"github.com/2389-research/dendro/internal/tui"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Cluster the rows of a table",
	Long: `Embed one column of each row, build a hierarchical clustering, and
print the most significant clusters. Use - to read the table from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

// Flags
var (
	clusterEmbeddings string
	clusterDim        int
	clusterK          int
	clusterMethod     string
	clusterStrategy   string
	clusterColumn     int
	clusterFormat     string
	clusterHeader     bool
	clusterOOV        string
	clusterSVG        string
	clusterJSON       string
	clusterTree       bool
	clusterSave       bool
	clusterBrowse     bool
)

func init() {
	rootCmd.AddCommand(clusterCmd)

	f := clusterCmd.Flags()
	f.StringVar(&clusterEmbeddings, "embeddings", "", "Embedding table in GloVe text format (default from config)")
	f.IntVar(&clusterDim, "dim", 0, "Expected embedding dimension (default from config, 0 skips the check)")
	f.IntVar(&clusterK, "k", 0, "Number of clusters to report (default from config)")
	f.StringVar(&clusterMethod, "method", "", "Linkage method: ward, single, complete, average")
	f.StringVar(&clusterStrategy, "strategy", "", "Selection strategy: significant or cut")
	f.IntVar(&clusterColumn, "column", 0, "Zero-based column holding the token to embed")
	f.StringVar(&clusterFormat, "format", "", "Table format: csv, tsv, space (default from extension)")
	f.BoolVar(&clusterHeader, "header", false, "First line of the table is a header")
	f.StringVar(&clusterOOV, "oov", "", "Unknown tokens: error or zero (default from config)")
	f.StringVar(&clusterSVG, "svg", "", "Write an SVG dendrogram to this path")
	f.StringVar(&clusterJSON, "json", "", "Write the linkage and clusters as JSON to this path (- for stdout)")
	f.BoolVar(&clusterTree, "tree", false, "Print a text dendrogram")
	f.BoolVar(&clusterSave, "save", false, "Save the result as a report")
	f.BoolVar(&clusterBrowse, "browse", false, "Browse the clusters interactively")
}

// clusterOptions merges flags over the loaded config.
func clusterOptions() pipeline.Options {
	cfg := globalConfig
	opts := pipeline.Options{
		EmbeddingDim: cfg.Embeddings.Dim,
		Method:       cfg.Clustering.Method,
		TopK:         cfg.Clustering.TopK,
		Strategy:     cfg.Clustering.Strategy,
		Column:       clusterColumn,
		OOV:          cfg.Embeddings.OOV,
	}
	if clusterEmbeddings != "" {
		// A different table makes the configured dimension meaningless.
		opts.EmbeddingDim = 0
	}
	if clusterDim != 0 {
		opts.EmbeddingDim = clusterDim
	}
	if clusterK != 0 {
		opts.TopK = clusterK
	}
	if clusterMethod != "" {
		opts.Method = clusterMethod
	}
	if clusterStrategy != "" {
		opts.Strategy = clusterStrategy
	}
	if clusterOOV != "" {
		opts.OOV = clusterOOV
	}
	return opts
}

func runCluster(cmd *cobra.Command, args []string) error {
	tbl, err := table.Load(args[0], table.Options{Format: clusterFormat, HasHeader: clusterHeader})
	if err != nil {
		return err
	}
	logger.Logger.Debugw("loaded table", "name", tbl.Name, "rows", len(tbl.Rows))

	emb, err := loadEmbedder(globalConfig, clusterEmbeddings)
	if err != nil {
		return err
	}
	opts := clusterOptions()
	opts.Embedder = emb

	var res *pipeline.Result
	if clusterBrowse {
		res, err = browseClusters(tbl, opts)
	} else {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		res, err = pipeline.Run(ctx, tbl.Rows, opts)
	}
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	out := cmd.OutOrStdout()
	labels := tbl.Labels(opts.Column)

	if clusterJSON != "-" && !clusterBrowse {
		if err := printClusters(out, tbl, res); err != nil {
			return err
		}
	}
	if clusterTree {
		_, _ = fmt.Fprint(out, dendrogram.Render(res.Tree, labels, dendrogram.TextOptions{}))
	}
	if clusterSVG != "" {
		if err := writeSVG(clusterSVG, tbl.Name, res, labels); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Dendrogram written to %s\n", clusterSVG)
	}
	if clusterJSON != "" {
		doc := dendrogram.NewDocument(res.Tree, res.Merges, string(res.Method), labels, res.Clusters)
		if err := writeJSON(clusterJSON, doc); err != nil {
			return err
		}
	}
	if clusterSave {
		report := res.Report(args[0], tbl.Rows, opts.Column)
		if err := globalReportStore.WriteReport(report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report saved: %s\n", report.FilePath)
	}
	return nil
}

func browseClusters(tbl *table.Table, opts pipeline.Options) (*pipeline.Result, error) {
	model := tui.NewBrowseModel(tbl.Name, tbl.Labels(opts.Column), func(ctx context.Context) (*pipeline.Result, error) {
		return pipeline.Run(ctx, tbl.Rows, opts)
	})

	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return final.(tui.BrowseModel).Result()
}

func printClusters(w io.Writer, tbl *table.Table, res *pipeline.Result) error {
	for i, c := range res.Clusters {
		sub, err := tbl.SubTable(c.Members)
		if err != nil {
			return err
		}
		sub.Name = fmt.Sprintf("%s cluster %d", tbl.Name, i+1)
		_, _ = fmt.Fprintf(w, "--- cluster %d: %d rows, distance %.4g, cohesion %.3f\n",
			i+1, len(c.Members), c.Distance, c.Cohesion)
		_, _ = fmt.Fprint(w, sub.String())
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func writeSVG(path, title string, res *pipeline.Result, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := dendrogram.WriteSVG(f, res.Tree, labels, dendrogram.SVGOptions{Title: title}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, doc dendrogram.Document) error {
	if path == "-" {
		return dendrogram.WriteJSON(os.Stdout, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := dendrogram.WriteJSON(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
