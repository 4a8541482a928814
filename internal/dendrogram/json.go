// ABOUTME: Exports the linkage matrix and leaf order as JSON.
// ABOUTME: Rows follow the [left, right, distance, size] layout plotting tools expect.
package dendrogram

import (
	"encoding/json"
	"io"

	"github.com/2389-research/dendro/internal/models"
	"github.com/2389-research/dendro/internal/tree"
)

// Document is the JSON export of a clustering run.
type Document struct {
	N        int              `json:"n"`
	Method   string           `json:"method"`
	Labels   []string         `json:"labels,omitempty"`
	Linkage  [][4]float64     `json:"linkage"`
	Leaves   []int            `json:"leaves"`
	Clusters []models.Cluster `json:"clusters,omitempty"`
}

// NewDocument assembles the export for t.
func NewDocument(t *tree.Tree, merges []models.Merge, method string, labels []string, clusters []models.Cluster) Document {
	rows := make([][4]float64, len(merges))
	for i, m := range merges {
		rows[i] = [4]float64{float64(m.Left), float64(m.Right), m.Distance, float64(m.Size)}
	}
	return Document{
		N:        t.N(),
		Method:   method,
		Labels:   labels,
		Linkage:  rows,
		Leaves:   t.LeafOrder(),
		Clusters: clusters,
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
