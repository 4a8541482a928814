// ABOUTME: Merge-tree index over linkage output with per-node membership sets.
// ABOUTME: Flat slices indexed by node id; leaves are 0..n-1, merges n..2n-2.
package tree

import (
	"math"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

const noChild = -1

// Tree is an immutable binary merge tree built from linkage output.
type Tree struct {
	n       int
	left    []int
	right   []int
	dist    []float64
	members [][]int
}

// Index builds the tree for n leaves from merges, where merges[i] creates
// node n+i. Every child id must already exist and be used at most once.
func Index(merges []models.Merge, n int) (*Tree, error) {
	if n < 1 {
		return nil, errors.InvalidInputf("tree needs at least one leaf, got %d", n)
	}
	if len(merges) != n-1 {
		return nil, errors.MalformedTreef("%d leaves need %d merges, got %d", n, n-1, len(merges))
	}

	total := 2*n - 1
	t := &Tree{
		n:     n,
		left:  make([]int, total),
		right: make([]int, total),
		dist:  make([]float64, total),
	}
	for v := 0; v < n; v++ {
		t.left[v] = noChild
		t.right[v] = noChild
	}

	consumed := make([]bool, total)
	for i, m := range merges {
		node := n + i
		for _, child := range [2]int{m.Left, m.Right} {
			if child < 0 || child >= node {
				return nil, errors.MalformedTreef("merge %d: child %d is not an existing node below %d", i, child, node)
			}
			if consumed[child] {
				return nil, errors.MalformedTreef("merge %d: node %d already has a parent", i, child)
			}
			consumed[child] = true
		}
		if m.Left == m.Right {
			return nil, errors.MalformedTreef("merge %d: node %d merged with itself", i, m.Left)
		}
		if m.Distance < 0 || math.IsNaN(m.Distance) {
			return nil, errors.MalformedTreef("merge %d: invalid distance %v", i, m.Distance)
		}
		t.left[node] = m.Left
		t.right[node] = m.Right
		t.dist[node] = m.Distance
	}

	if err := t.resolve(merges); err != nil {
		return nil, err
	}
	return t, nil
}

// resolve fills members for every node. Children always have smaller ids,
// so a single ascending pass visits them before their parent.
func (t *Tree) resolve(merges []models.Merge) error {
	t.members = make([][]int, t.Len())
	for v := 0; v < t.n; v++ {
		t.members[v] = []int{v}
	}
	for v := t.n; v < t.Len(); v++ {
		set := union(t.members[t.left[v]], t.members[t.right[v]])
		if want := merges[v-t.n].Size; want != 0 && want != len(set) {
			return errors.MalformedTreef("node %d: size %d recorded, %d leaves found", v, want, len(set))
		}
		t.members[v] = set
	}
	return nil
}

// union merges two sorted disjoint id lists.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// N returns the number of leaves.
func (t *Tree) N() int { return t.n }

// Len returns the number of nodes, 2n-1.
func (t *Tree) Len() int { return 2*t.n - 1 }

// Root returns the id of the last merge, or leaf 0 for a single-row tree.
func (t *Tree) Root() int { return t.Len() - 1 }

// IsLeaf reports whether v is an input row.
func (t *Tree) IsLeaf(v int) bool { return v < t.n }

// Children returns the child ids of an internal node. ok is false for leaves.
func (t *Tree) Children(v int) (left, right int, ok bool) {
	if t.IsLeaf(v) {
		return noChild, noChild, false
	}
	return t.left[v], t.right[v], true
}

// Distance returns the merge distance of an internal node. ok is false for leaves.
func (t *Tree) Distance(v int) (float64, bool) {
	if t.IsLeaf(v) {
		return 0, false
	}
	return t.dist[v], true
}

// Members returns the sorted row ids under v. The slice must not be modified.
func (t *Tree) Members(v int) []int {
	return t.members[v]
}

// Cluster describes node v as a models.Cluster.
func (t *Tree) Cluster(v int) models.Cluster {
	d, _ := t.Distance(v)
	members := make([]int, len(t.members[v]))
	copy(members, t.members[v])
	return models.Cluster{Node: v, Members: members, Distance: d}
}

// LeafOrder lists leaves left to right as a dendrogram draws them.
func (t *Tree) LeafOrder() []int {
	out := make([]int, 0, t.n)
	stack := []int{t.Root()}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.IsLeaf(v) {
			out = append(out, v)
			continue
		}
		stack = append(stack, t.right[v], t.left[v])
	}
	return out
}
