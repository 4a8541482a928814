// ABOUTME: Core data models for rows, merge records, clusters, and saved reports.
// ABOUTME: Provides constructor functions and type definitions shared by dendro packages.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Row is one line of tabular input as an ordered sequence of tokens.
type Row []string

// Label returns the token at column col, or "" when the row is too short.
func (r Row) Label(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Merge is one linkage step. Left and Right are node ids: leaves are
// 0..n-1, the merge at position i creates node n+i.
type Merge struct {
	Left     int     `json:"left" yaml:"left"`
	Right    int     `json:"right" yaml:"right"`
	Distance float64 `json:"distance" yaml:"distance"`
	Size     int     `json:"size" yaml:"size"`
}

// Cluster is a selected merge-tree node and the rows it subsumes.
type Cluster struct {
	Node     int     `json:"node" yaml:"node"`
	Members  []int   `json:"members" yaml:"members"`   // ascending row indices
	Distance float64 `json:"distance" yaml:"distance"` // 0 for leaves
	Cohesion float64 `json:"cohesion" yaml:"cohesion"` // mean cosine similarity to centroid
}

// IsLeaf reports whether the cluster is a single input row.
func (c Cluster) IsLeaf() bool {
	return len(c.Members) == 1
}

// Selection strategies.
const (
	StrategySignificant = "significant"
	StrategyCut         = "cut"
)

// ValidStrategies lists the accepted cluster selection strategies.
var ValidStrategies = []string{StrategySignificant, StrategyCut}

// IsValidStrategy returns true if the given strategy name is valid.
func IsValidStrategy(name string) bool {
	for _, s := range ValidStrategies {
		if s == name {
			return true
		}
	}
	return false
}

// Report is the persisted result of one clustering run.
type Report struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Source    string
	Method    string
	Strategy  string
	TopK      int
	Labels    []string
	Merges    []Merge
	Clusters  []Cluster
	FilePath  string
}

// NewReport creates a report with generated UUID and timestamp.
func NewReport(source, method, strategy string, topK int) *Report {
	return &Report{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Source:    source,
		Method:    method,
		Strategy:  strategy,
		TopK:      topK,
	}
}

// MemberLabels resolves a cluster's member indices to report labels.
func (r *Report) MemberLabels(c Cluster) []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		if m >= 0 && m < len(r.Labels) {
			out = append(out, r.Labels[m])
		}
	}
	return out
}

// ClusterLine summarizes cluster i on one line with up to 25 member labels.
func (r *Report) ClusterLine(i int) string {
	c := r.Clusters[i]
	return fmt.Sprintf("%d. [%d rows, distance %.4g, cohesion %.3f] %s",
		i+1, len(c.Members), c.Distance, c.Cohesion, JoinLabels(r.MemberLabels(c), 25))
}

// JoinLabels renders labels as a comma separated list, truncated after max entries.
func JoinLabels(labels []string, max int) string {
	if max > 0 && len(labels) > max {
		return strings.Join(labels[:max], ", ") + ", ..."
	}
	return strings.Join(labels, ", ")
}
