// ABOUTME: Cluster selection over a merge tree.
// ABOUTME: Significant picks nodes by merge distance then orders them breadth-first; Cut is the flat k-way cut.
package tree

import (
	"sort"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

// DefaultTopK is the number of clusters selected when no K is configured.
const DefaultTopK = 5

// CandidateOrder lists every node id with internal nodes first, by
// descending merge distance, followed by the leaves. Ties keep ascending id order.
func (t *Tree) CandidateOrder() []int {
	order := make([]int, t.Len())
	for v := range order {
		order[v] = v
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if t.IsLeaf(a) || t.IsLeaf(b) {
			return !t.IsLeaf(a) && t.IsLeaf(b)
		}
		return t.dist[a] > t.dist[b]
	})
	return order
}

// Kept walks CandidateOrder, adding each node and its children, until at
// least k distinct ids are kept or the candidates run out.
func (t *Tree) Kept(k int) []bool {
	kept := make([]bool, t.Len())
	count := 0
	keep := func(v int) {
		if !kept[v] {
			kept[v] = true
			count++
		}
	}
	for _, v := range t.CandidateOrder() {
		keep(v)
		if l, r, ok := t.Children(v); ok {
			keep(l)
			keep(r)
		}
		if count >= k {
			break
		}
	}
	return kept
}

// SelectSignificant returns up to k clusters. Nodes are chosen by merge
// distance (Kept) but reported in breadth-first order from the root, so the
// result is not sorted by distance.
func (t *Tree) SelectSignificant(k int) ([]models.Cluster, error) {
	if k <= 0 {
		return nil, errors.InvalidInputf("k must be positive, got %d", k)
	}
	kept := t.Kept(k)

	var out []models.Cluster
	queue := []int{t.Root()}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if kept[v] {
			out = append(out, t.Cluster(v))
			if len(out) >= k {
				break
			}
		}
		if l, r, ok := t.Children(v); ok {
			queue = append(queue, l, r)
		}
	}
	return out, nil
}

// Cut splits the tree into k flat clusters by undoing the k-1 merges with
// the largest distances, working down from the root. Clusters are ordered by
// their smallest row id. k above the number of rows yields one cluster per row.
func (t *Tree) Cut(k int) ([]models.Cluster, error) {
	if k <= 0 {
		return nil, errors.InvalidInputf("k must be positive, got %d", k)
	}

	frontier := []int{t.Root()}
	for len(frontier) < k {
		best := -1
		for i, v := range frontier {
			if t.IsLeaf(v) {
				continue
			}
			if best < 0 || t.dist[v] > t.dist[frontier[best]] ||
				(t.dist[v] == t.dist[frontier[best]] && v > frontier[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		v := frontier[best]
		frontier[best] = t.left[v]
		frontier = append(frontier, t.right[v])
	}

	out := make([]models.Cluster, len(frontier))
	for i, v := range frontier {
		out[i] = t.Cluster(v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Members[0] < out[j].Members[0]
	})
	return out, nil
}

// Select dispatches on a strategy name.
func (t *Tree) Select(strategy string, k int) ([]models.Cluster, error) {
	switch strategy {
	case models.StrategySignificant, "":
		return t.SelectSignificant(k)
	case models.StrategyCut:
		return t.Cut(k)
	default:
		return nil, errors.InvalidInputf("unknown selection strategy %q", strategy)
	}
}
