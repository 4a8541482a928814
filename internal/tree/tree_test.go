// ABOUTME: Tests for merge-tree indexing, membership resolution, and cluster selection.
// ABOUTME: Includes the four-word scenario, boundary trees, and property checks on random linkages.
package tree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/linkage"
	"github.com/2389-research/dendro/internal/models"
)

// fourWords is the Ward linkage of cat=[0,0], dog=[0,1], car=[10,0], truck=[10,1].
var fourWords = []models.Merge{
	{Left: 0, Right: 1, Distance: 1, Size: 2},
	{Left: 2, Right: 3, Distance: 1, Size: 2},
	{Left: 4, Right: 5, Distance: math.Sqrt(200), Size: 4},
}

func memberSets(clusters []models.Cluster) [][]int {
	out := make([][]int, len(clusters))
	for i, c := range clusters {
		out[i] = c.Members
	}
	return out
}

func TestIndexFourWords(t *testing.T) {
	tr, err := Index(fourWords, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, tr.N())
	assert.Equal(t, 7, tr.Len())
	assert.Equal(t, 6, tr.Root())

	l, r, ok := tr.Children(6)
	require.True(t, ok)
	assert.Equal(t, 4, l)
	assert.Equal(t, 5, r)

	_, _, ok = tr.Children(2)
	assert.False(t, ok)

	d, ok := tr.Distance(5)
	require.True(t, ok)
	assert.Equal(t, 1.0, d)
	_, ok = tr.Distance(0)
	assert.False(t, ok)

	assert.Equal(t, []int{0, 1}, tr.Members(4))
	assert.Equal(t, []int{2, 3}, tr.Members(5))
	assert.Equal(t, []int{0, 1, 2, 3}, tr.Members(6))
	assert.Equal(t, []int{3}, tr.Members(3))
}

func TestCandidateOrderFourWords(t *testing.T) {
	tr, err := Index(fourWords, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 4, 5, 0, 1, 2, 3}, tr.CandidateOrder())
}

func TestSelectSignificantFourWords(t *testing.T) {
	tr, err := Index(fourWords, 4)
	require.NoError(t, err)

	got, err := tr.SelectSignificant(3)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1}, {2, 3}}, memberSets(got))
	assert.Equal(t, 6, got[0].Node)
	assert.InDelta(t, math.Sqrt(200), got[0].Distance, 1e-12)

	got, err = tr.SelectSignificant(5)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {0, 1}, {2, 3}, {0}, {1}}, memberSets(got))
	assert.True(t, got[3].IsLeaf())
	assert.Equal(t, 0.0, got[3].Distance)
}

func TestSelectSignificantOrdersBreadthFirst(t *testing.T) {
	// Node 7 joins a tight pair (node 5) with leaf 4 at a large distance,
	// so it is kept before node 6 while sitting deeper in the tree.
	merges := []models.Merge{
		{Left: 0, Right: 1, Distance: 1, Size: 2},  // 5
		{Left: 2, Right: 3, Distance: 2, Size: 2},  // 6
		{Left: 4, Right: 5, Distance: 9, Size: 3},  // 7
		{Left: 6, Right: 7, Distance: 10, Size: 5}, // 8
	}
	tr, err := Index(merges, 5)
	require.NoError(t, err)

	assert.Equal(t, []int{8, 7, 6, 5, 0, 1, 2, 3, 4}, tr.CandidateOrder())

	kept := tr.Kept(4)
	for _, v := range []int{8, 6, 7, 4, 5} {
		assert.True(t, kept[v], "node %d", v)
	}

	got, err := tr.SelectSignificant(4)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 6, 7, 4}, []int{got[0].Node, got[1].Node, got[2].Node, got[3].Node})
}

func TestSelectSignificantTwoRows(t *testing.T) {
	tr, err := Index([]models.Merge{{Left: 0, Right: 1, Distance: 3, Size: 2}}, 2)
	require.NoError(t, err)

	got, err := tr.SelectSignificant(5)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {0}, {1}}, memberSets(got))
}

func TestSelectSignificantSingleRow(t *testing.T) {
	tr, err := Index(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Root())

	got, err := tr.SelectSignificant(5)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}}, memberSets(got))
	assert.Equal(t, []int{0}, tr.LeafOrder())
}

func TestSelectRejectsNonPositiveK(t *testing.T) {
	tr, err := Index(fourWords, 4)
	require.NoError(t, err)

	for _, strategy := range []string{models.StrategySignificant, models.StrategyCut} {
		_, err = tr.Select(strategy, 0)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput), strategy)
	}
	_, err = tr.Select("random", 3)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestCutFourWords(t *testing.T) {
	tr, err := Index(fourWords, 4)
	require.NoError(t, err)

	tests := []struct {
		k    int
		want [][]int
	}{
		{1, [][]int{{0, 1, 2, 3}}},
		{2, [][]int{{0, 1}, {2, 3}}},
		{3, [][]int{{0, 1}, {2}, {3}}},
		{4, [][]int{{0}, {1}, {2}, {3}}},
		{9, [][]int{{0}, {1}, {2}, {3}}},
	}
	for _, tt := range tests {
		got, err := tr.Select(models.StrategyCut, tt.k)
		require.NoError(t, err)
		assert.Equal(t, tt.want, memberSets(got), "k=%d", tt.k)
	}
}

func TestLeafOrder(t *testing.T) {
	merges := []models.Merge{
		{Left: 1, Right: 2, Distance: 1, Size: 2}, // 4
		{Left: 0, Right: 4, Distance: 2, Size: 3}, // 5
		{Left: 3, Right: 5, Distance: 3, Size: 4}, // 6
	}
	tr, err := Index(merges, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 1, 2}, tr.LeafOrder())
}

func TestIndexRejectsMalformedTrees(t *testing.T) {
	tests := []struct {
		name   string
		merges []models.Merge
		n      int
	}{
		{"too few merges", fourWords[:2], 4},
		{"child not yet defined", []models.Merge{{Left: 0, Right: 3, Distance: 1, Size: 2}, {Left: 2, Right: 1, Distance: 2, Size: 3}}, 3},
		{"negative child", []models.Merge{{Left: -1, Right: 1, Distance: 1, Size: 2}}, 2},
		{"child reused", []models.Merge{{Left: 0, Right: 1, Distance: 1, Size: 2}, {Left: 0, Right: 2, Distance: 2, Size: 3}}, 3},
		{"self merge", []models.Merge{{Left: 1, Right: 1, Distance: 1, Size: 2}}, 2},
		{"negative distance", []models.Merge{{Left: 0, Right: 1, Distance: -1, Size: 2}}, 2},
		{"size mismatch", []models.Merge{{Left: 0, Right: 1, Distance: 1, Size: 3}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Index(tt.merges, tt.n)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedTree))
		})
	}

	_, err := Index(nil, 0)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestTreePropertiesOnRandomLinkage(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, n := range []int{2, 3, 5, 17, 60} {
		vectors := make([][]float64, n)
		for i := range vectors {
			vectors[i] = []float64{rng.Float64() * 10, rng.Float64() * 10, rng.Float64()}
		}
		merges, err := linkage.Build(vectors, linkage.Ward)
		require.NoError(t, err)
		require.Len(t, merges, n-1)

		tr, err := Index(merges, n)
		require.NoError(t, err)

		for i, m := range merges {
			v := n + i
			l, r, ok := tr.Children(v)
			require.True(t, ok)
			assert.Equal(t, m.Size, len(tr.Members(v)))
			assert.Len(t, tr.Members(v), len(tr.Members(l))+len(tr.Members(r)))
			assert.Empty(t, intersect(tr.Members(l), tr.Members(r)))
		}

		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		assert.Equal(t, all, tr.Members(tr.Root()))
		assert.ElementsMatch(t, all, tr.LeafOrder())

		for _, k := range []int{1, 3, 5, 8} {
			got, err := tr.SelectSignificant(k)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), k)
			assert.NotEmpty(t, got)
			assertLaminar(t, got, n)

			again, err := tr.SelectSignificant(k)
			require.NoError(t, err)
			assert.Equal(t, got, again)

			cut, err := tr.Cut(k)
			require.NoError(t, err)
			assert.Len(t, cut, min(k, n))
			total := 0
			for _, c := range cut {
				total += len(c.Members)
			}
			assert.Equal(t, n, total)
			assertLaminar(t, cut, n)
		}
	}
}

// assertLaminar checks every pair of clusters is disjoint or nested and all members are rows.
func assertLaminar(t *testing.T, clusters []models.Cluster, n int) {
	t.Helper()
	for i, a := range clusters {
		require.NotEmpty(t, a.Members)
		for _, m := range a.Members {
			assert.True(t, m >= 0 && m < n)
		}
		for _, b := range clusters[i+1:] {
			common := len(intersect(a.Members, b.Members))
			nested := common == len(a.Members) || common == len(b.Members)
			assert.True(t, common == 0 || nested, "clusters %d and %d partially overlap", a.Node, b.Node)
		}
	}
}

func intersect(a, b []int) []int {
	seen := make(map[int]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	var out []int
	for _, v := range b {
		if seen[v] {
			out = append(out, v)
		}
	}
	return out
}
