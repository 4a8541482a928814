// ABOUTME: MCP tool implementations for clustering and saved reports.
// ABOUTME: Registers cluster_rows, list_reports, and read_report.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/dendro/internal/dendrogram"
	"github.com/2389-research/dendro/internal/embeddings"
	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/logger"
	"github.com/2389-research/dendro/internal/models"
	"github.com/2389-research/dendro/internal/pipeline"
)

func (s *Server) registerClusterTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "cluster_rows",
		Description: "Cluster rows of text by the word embedding of one column. Builds a hierarchical clustering and returns the top-K most significant clusters with their member rows. Pass either rows (arrays of tokens) or items (single tokens).",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}, "description": "Rows of tokens; the column token is embedded"},
				"items": {"type": "array", "items": {"type": "string"}, "description": "Single-token rows, shorthand for rows"},
				"k": {"type": "number", "description": "Number of clusters to return (default 5)"},
				"method": {"type": "string", "enum": ["ward", "single", "complete", "average"], "description": "Linkage method (default ward)"},
				"strategy": {"type": "string", "enum": ["significant", "cut"], "description": "Cluster selection strategy (default significant)"},
				"column": {"type": "number", "description": "Zero-based token column to embed (default 0)"},
				"oov": {"type": "string", "enum": ["error", "zero"], "description": "Unknown tokens fail the call or embed as zero vectors"},
				"embeddings": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "number"}}, "description": "Inline token vectors, used instead of the configured table"},
				"format": {"type": "string", "enum": ["text", "json"], "description": "Output format (default text)"},
				"save": {"type": "boolean", "description": "Persist the result as a report"},
				"source": {"type": "string", "description": "Name recorded on a saved report"}
			}
		}`),
	}, s.handleClusterRows)
}

func (s *Server) registerReportTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_reports",
		Description: "List saved clustering reports, most recent first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"days": {"type": "number", "description": "Number of days back to search (default: 30)"},
				"limit": {"type": "number", "description": "Maximum number of reports to return (default: 10)"}
			}
		}`),
	}, s.handleListReports)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_report",
		Description: "Read a saved clustering report by file path.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "File path to the report"}
			},
			"required": ["path"]
		}`),
	}, s.handleReadReport)
}

type clusterArgs struct {
	Rows       [][]string           `json:"rows"`
	Items      []string             `json:"items"`
	K          int                  `json:"k"`
	Method     string               `json:"method"`
	Strategy   string               `json:"strategy"`
	Column     int                  `json:"column"`
	OOV        string               `json:"oov"`
	Embeddings map[string][]float32 `json:"embeddings"`
	Format     string               `json:"format"`
	Save       bool                 `json:"save"`
	Source     string               `json:"source"`
}

func (a *clusterArgs) rows() []models.Row {
	out := make([]models.Row, 0, len(a.Rows)+len(a.Items))
	for _, r := range a.Rows {
		out = append(out, models.Row(r))
	}
	for _, item := range a.Items {
		out = append(out, models.Row{item})
	}
	return out
}

func (s *Server) handleClusterRows(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args clusterArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if len(args.Rows) > 0 && len(args.Items) > 0 {
		return toolError("pass rows or items, not both"), nil
	}
	rows := args.rows()
	if len(rows) == 0 {
		return toolError("rows or items is required"), nil
	}

	opts := s.defaults
	opts.Embedder = s.embedder
	if len(args.Embeddings) > 0 {
		inline, err := embeddings.NewTable(args.Embeddings)
		if err != nil {
			return toolError("invalid embeddings: %v", err), nil
		}
		opts.Embedder = inline
		opts.EmbeddingDim = 0
	}
	if opts.Embedder == nil {
		return toolError("no embedding table configured; pass embeddings or run dendro setup"), nil
	}
	if args.K != 0 {
		opts.TopK = args.K
	}
	if args.Method != "" {
		opts.Method = args.Method
	}
	if args.Strategy != "" {
		opts.Strategy = args.Strategy
	}
	if args.OOV != "" {
		opts.OOV = args.OOV
	}
	opts.Column = args.Column

	res, err := pipeline.Run(ctx, rows, opts)
	if err != nil {
		return toolError("clustering failed: %s", describe(err)), nil
	}

	source := args.Source
	if source == "" {
		source = "mcp"
	}
	report := res.Report(source, rows, args.Column)

	var sb strings.Builder
	if args.Format == "json" {
		var buf bytes.Buffer
		doc := dendrogram.NewDocument(res.Tree, res.Merges, string(res.Method), report.Labels, res.Clusters)
		if err := dendrogram.WriteJSON(&buf, doc); err != nil {
			return toolError("failed to encode result: %v", err), nil
		}
		sb.Write(buf.Bytes())
	} else {
		writeClusters(&sb, report)
	}

	if args.Save {
		if err := s.reports.WriteReport(report); err != nil {
			return toolError("failed to save report: %v", err), nil
		}
		logger.Logger.Infow("saved report", "path", report.FilePath, "rows", len(rows))
		sb.WriteString(fmt.Sprintf("\nSaved: %s\n", report.FilePath))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleListReports(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Days  int `json:"days"`
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Days <= 0 {
		args.Days = 30
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}

	reports, err := s.reports.ListReports(args.Limit, args.Days)
	if err != nil {
		return toolError("failed to list reports: %v", err), nil
	}
	if len(reports) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No recent reports found."}},
		}, nil
	}

	var sb strings.Builder
	for _, r := range reports {
		sb.WriteString(fmt.Sprintf("- %s %s (%d rows, %s, %d clusters) %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Source,
			len(r.Labels),
			r.Method,
			len(r.Clusters),
			r.FilePath,
		))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleReadReport(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Path == "" {
		return toolError("path is required"), nil
	}

	report, err := s.reports.ReadReport(args.Path)
	if err != nil {
		return toolError("failed to read report: %v", err), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Date: %s\n", report.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Source: %s\n", report.Source))
	sb.WriteString(fmt.Sprintf("Method: %s\n", report.Method))
	sb.WriteString(fmt.Sprintf("Strategy: %s (top %d)\n\n", report.Strategy, report.TopK))
	writeClusters(&sb, report)

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

// writeClusters prints one line per cluster with its member labels.
func writeClusters(sb *strings.Builder, r *models.Report) {
	for i := range r.Clusters {
		sb.WriteString(r.ClusterLine(i))
		sb.WriteString("\n")
	}
}

// describe renders an error with any attached hints.
func describe(err error) string {
	msg := err.Error()
	if hints := errors.FlattenHints(err); hints != "" {
		msg += " (" + hints + ")"
	}
	return msg
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
