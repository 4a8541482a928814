// ABOUTME: Hierarchical agglomerative clustering producing a merge record list.
// ABOUTME: Nearest-neighbor chain over Lance-Williams updates, labeled like scipy's linkage.
package linkage

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

// Method is a linkage criterion.
type Method string

// Supported linkage criteria. All of them are reducible, which the
// nearest-neighbor chain relies on.
const (
	Ward     Method = "ward"
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
)

// Methods lists the supported criteria in display order.
var Methods = []Method{Ward, Single, Complete, Average}

// ParseMethod resolves a method name case-insensitively. Empty means Ward.
func ParseMethod(name string) (Method, error) {
	if strings.TrimSpace(name) == "" {
		return Ward, nil
	}
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", errors.InvalidInputf("unknown linkage method %q", name)
}

// Build clusters vectors and returns n-1 merges for n vectors.
//
// Merges are ordered by non-decreasing distance. The merge at position i
// creates node n+i; its children are leaves (0..n-1) or earlier merges, with
// Left < Right. Ward distances are Euclidean, reported the way scipy does.
func Build(vectors [][]float64, method Method) ([]models.Merge, error) {
	if err := validate(vectors); err != nil {
		return nil, err
	}
	update, err := updater(method)
	if err != nil {
		return nil, err
	}

	n := len(vectors)
	if n == 1 {
		return []models.Merge{}, nil
	}

	d := pairwise(vectors, method == Ward)
	size := make([]int, n)
	active := make([]bool, n)
	for i := range size {
		size[i] = 1
		active[i] = true
	}

	// Slot-labeled merges: the merged cluster lives on in slot y.
	raw := make([]models.Merge, 0, n-1)
	chain := make([]int, 0, n)

	for k := 0; k < n-1; k++ {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if active[i] {
					chain = append(chain, i)
					break
				}
			}
		}

		var x, y int
		var minDist float64
		for {
			x = chain[len(chain)-1]
			minDist = math.Inf(1)
			if len(chain) > 1 {
				y = chain[len(chain)-2]
				minDist = d[x][y]
			}
			for i := 0; i < n; i++ {
				if !active[i] || i == x {
					continue
				}
				if d[x][i] < minDist {
					minDist = d[x][i]
					y = i
				}
			}
			if len(chain) > 1 && y == chain[len(chain)-2] {
				break
			}
			chain = append(chain, y)
		}
		chain = chain[:len(chain)-2]

		if x > y {
			x, y = y, x
		}
		nx, ny := size[x], size[y]
		raw = append(raw, models.Merge{Left: x, Right: y, Distance: minDist, Size: nx + ny})

		active[x] = false
		size[y] = nx + ny
		for i := 0; i < n; i++ {
			if !active[i] || i == y {
				continue
			}
			v := update(d[x][i], d[y][i], minDist, nx, ny, size[i])
			d[y][i] = v
			d[i][y] = v
		}
	}

	if method == Ward {
		for i := range raw {
			raw[i].Distance = math.Sqrt(math.Max(raw[i].Distance, 0))
		}
	}

	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].Distance < raw[j].Distance
	})
	return relabel(raw, n), nil
}

// updateFunc is a Lance-Williams recurrence: the distance from the cluster
// formed by x and y to another cluster i.
type updateFunc func(dxi, dyi, dxy float64, nx, ny, ni int) float64

func updater(method Method) (updateFunc, error) {
	switch method {
	case Ward, "":
		// Operates on squared distances.
		return func(dxi, dyi, dxy float64, nx, ny, ni int) float64 {
			fx, fy, fi := float64(nx), float64(ny), float64(ni)
			return ((fx+fi)*dxi + (fy+fi)*dyi - fi*dxy) / (fx + fy + fi)
		}, nil
	case Single:
		return func(dxi, dyi, _ float64, _, _, _ int) float64 {
			return math.Min(dxi, dyi)
		}, nil
	case Complete:
		return func(dxi, dyi, _ float64, _, _, _ int) float64 {
			return math.Max(dxi, dyi)
		}, nil
	case Average:
		return func(dxi, dyi, _ float64, nx, ny, _ int) float64 {
			fx, fy := float64(nx), float64(ny)
			return (fx*dxi + fy*dyi) / (fx + fy)
		}, nil
	default:
		return nil, errors.InvalidInputf("unknown linkage method %q", string(method))
	}
}

func validate(vectors [][]float64) error {
	if len(vectors) == 0 {
		return errors.InvalidInputf("no vectors to cluster")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return errors.InvalidInputf("vectors must not be empty")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return errors.InvalidInputf("vector %d has length %d, expected %d", i, len(v), dim)
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return errors.InvalidInputf("vector %d has a non-finite value", i)
			}
		}
	}
	return nil
}

// pairwise returns the full symmetric Euclidean distance matrix, squared when asked.
func pairwise(vectors [][]float64, squared bool) [][]float64 {
	n := len(vectors)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := floats.Distance(vectors[i], vectors[j], 2)
			if squared {
				v *= v
			}
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d
}

// relabel rewrites slot-labeled merges (sorted by distance) into node ids,
// using union-find to map each slot to the node that currently owns it.
func relabel(raw []models.Merge, n int) []models.Merge {
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		root := x
		for parent[root] != root {
			root = parent[root]
		}
		for parent[x] != root {
			parent[x], x = root, parent[x]
		}
		return root
	}

	leaves := make([]int, 2*n-1)
	for i := 0; i < n; i++ {
		leaves[i] = 1
	}

	out := make([]models.Merge, len(raw))
	for i, m := range raw {
		a, b := find(m.Left), find(m.Right)
		if a > b {
			a, b = b, a
		}
		node := n + i
		parent[a] = node
		parent[b] = node
		leaves[node] = leaves[a] + leaves[b]
		out[i] = models.Merge{Left: a, Right: b, Distance: m.Distance, Size: leaves[node]}
	}
	return out
}
