// ABOUTME: Dendrogram geometry shared by the SVG and terminal renderers.
// ABOUTME: Places leaves in draw order and colors subtrees below a distance threshold.
package dendrogram

import (
	"github.com/2389-research/dendro/internal/tree"
)

// DefaultColorThreshold is the fraction of the largest merge distance below
// which subtrees get their own color, matching the usual 0.7 convention.
const DefaultColorThreshold = 0.7

// Palette colors subtrees in order of appearance from the left.
var Palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#bcbd22", "#17becf"}

// AboveThresholdColor is used for links above the color threshold.
const AboveThresholdColor = "#7f7f7f"

type layout struct {
	t       *tree.Tree
	order   []int     // leaves left to right
	pos     []float64 // node id -> position along the leaf axis, in leaf units
	height  []float64 // node id -> merge distance, 0 for leaves
	maxDist float64
	color   []string // node id -> link color for internal nodes
}

func newLayout(t *tree.Tree, threshold float64) *layout {
	l := &layout{
		t:      t,
		order:  t.LeafOrder(),
		pos:    make([]float64, t.Len()),
		height: make([]float64, t.Len()),
		color:  make([]string, t.Len()),
	}
	for i, leaf := range l.order {
		l.pos[leaf] = float64(i)
	}
	for v := t.N(); v < t.Len(); v++ {
		left, right, _ := t.Children(v)
		d, _ := t.Distance(v)
		l.pos[v] = (l.pos[left] + l.pos[right]) / 2
		l.height[v] = d
		if d > l.maxDist {
			l.maxDist = d
		}
	}
	l.assignColors(threshold * l.maxDist)
	return l
}

// assignColors gives each maximal subtree below cut its own palette color.
func (l *layout) assignColors(cut float64) {
	next := 0
	var walk func(v int, inherited string)
	walk = func(v int, inherited string) {
		if l.t.IsLeaf(v) {
			return
		}
		c := inherited
		if c == "" {
			if l.height[v] < cut {
				c = Palette[next%len(Palette)]
				next++
			} else {
				l.color[v] = AboveThresholdColor
			}
		}
		if c != "" {
			l.color[v] = c
		}
		left, right, _ := l.t.Children(v)
		walk(left, c)
		walk(right, c)
	}
	walk(l.t.Root(), "")
}
