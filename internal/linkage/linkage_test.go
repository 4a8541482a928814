// ABOUTME: Tests for agglomerative linkage output shape and distances.
// ABOUTME: Cross-checks the nearest-neighbor chain against a naive quadratic-scan reference.
package linkage

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/dendro/internal/errors"
	"github.com/2389-research/dendro/internal/models"
)

var toy = [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"", "ward", "WARD", " Ward "} {
		m, err := ParseMethod(name)
		require.NoError(t, err, name)
		assert.Equal(t, Ward, m)
	}
	m, err := ParseMethod("average")
	require.NoError(t, err)
	assert.Equal(t, Average, m)

	_, err = ParseMethod("centroid")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestBuildWardToy(t *testing.T) {
	merges, err := Build(toy, Ward)
	require.NoError(t, err)
	require.Len(t, merges, 3)

	assert.Equal(t, models.Merge{Left: 0, Right: 1, Distance: 1, Size: 2}, merges[0])
	assert.Equal(t, models.Merge{Left: 2, Right: 3, Distance: 1, Size: 2}, merges[1])
	assert.Equal(t, 4, merges[2].Left)
	assert.Equal(t, 5, merges[2].Right)
	assert.Equal(t, 4, merges[2].Size)
	assert.InDelta(t, math.Sqrt(200), merges[2].Distance, 1e-9)
}

func TestBuildOtherMethodsToy(t *testing.T) {
	tests := []struct {
		method Method
		top    float64
	}{
		{Single, 10},
		{Complete, math.Sqrt(101)},
		{Average, (10 + 10 + 2*math.Sqrt(101)) / 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			merges, err := Build(toy, tt.method)
			require.NoError(t, err)
			require.Len(t, merges, 3)
			assert.InDelta(t, 1, merges[0].Distance, 1e-9)
			assert.InDelta(t, tt.top, merges[2].Distance, 1e-9)
			assert.Equal(t, models.Merge{Left: 4, Right: 5, Distance: merges[2].Distance, Size: 4}, merges[2])
		})
	}
}

func TestBuildSingleVector(t *testing.T) {
	merges, err := Build([][]float64{{1, 2}}, Ward)
	require.NoError(t, err)
	assert.Empty(t, merges)
}

func TestBuildTwoVectors(t *testing.T) {
	merges, err := Build([][]float64{{0, 0}, {3, 4}}, Ward)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, models.Merge{Left: 0, Right: 1, Distance: 5, Size: 2}, merges[0])
}

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float64
		method  Method
	}{
		{"empty", nil, Ward},
		{"zero length", [][]float64{{}, {}}, Ward},
		{"ragged", [][]float64{{1, 2}, {1}}, Ward},
		{"nan", [][]float64{{1, math.NaN()}, {1, 2}}, Ward},
		{"inf", [][]float64{{1, 2}, {math.Inf(1), 2}}, Single},
		{"method", toy, Method("median")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.vectors, tt.method)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestBuildInvariantsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, method := range Methods {
		for _, n := range []int{2, 3, 9, 40} {
			vectors := randomVectors(rng, n, 5)
			merges, err := Build(vectors, method)
			require.NoError(t, err)
			require.Len(t, merges, n-1)

			sizes := make([]int, 2*n-1)
			used := make([]bool, 2*n-1)
			for i := 0; i < n; i++ {
				sizes[i] = 1
			}
			for i, m := range merges {
				node := n + i
				assert.Less(t, m.Left, m.Right)
				assert.Less(t, m.Right, node)
				assert.False(t, used[m.Left], "node %d merged twice", m.Left)
				assert.False(t, used[m.Right], "node %d merged twice", m.Right)
				used[m.Left], used[m.Right] = true, true
				sizes[node] = sizes[m.Left] + sizes[m.Right]
				assert.Equal(t, sizes[node], m.Size)
				if i > 0 {
					assert.GreaterOrEqual(t, m.Distance, merges[i-1].Distance-1e-12)
				}
			}
			assert.Equal(t, n, merges[n-2].Size)
		}
	}
}

func TestBuildMatchesNaiveReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			vectors := randomVectors(rng, 25, 4)
			got, err := Build(vectors, method)
			require.NoError(t, err)
			want := naive(vectors, method)

			require.Len(t, got, len(want))
			for i := range want {
				assert.InDelta(t, want[i].distance, got[i].Distance, 1e-9, "merge %d", i)
				assert.Equal(t, want[i].members, members(got, len(vectors), len(vectors)+i), "merge %d", i)
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vectors := randomVectors(rng, 30, 6)
	a, err := Build(vectors, Ward)
	require.NoError(t, err)
	b, err := Build(vectors, Ward)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func randomVectors(rng *rand.Rand, n, dim int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dim)
		for j := range out[i] {
			out[i][j] = rng.NormFloat64()
		}
	}
	return out
}

// members expands node into its sorted leaf set.
func members(merges []models.Merge, n, node int) []int {
	if node < n {
		return []int{node}
	}
	m := merges[node-n]
	out := append(members(merges, n, m.Left), members(merges, n, m.Right)...)
	sort.Ints(out)
	return out
}

type naiveMerge struct {
	distance float64
	members  []int
}

// naive recomputes every inter-cluster distance from the points on each
// step, without any recurrence.
func naive(vectors [][]float64, method Method) []naiveMerge {
	clusters := make([][]int, len(vectors))
	for i := range clusters {
		clusters[i] = []int{i}
	}
	var out []naiveMerge
	for len(clusters) > 1 {
		bi, bj, best := 0, 1, math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := clusterDistance(vectors, clusters[i], clusters[j], method)
				if d < best {
					bi, bj, best = i, j, d
				}
			}
		}
		merged := append(append([]int{}, clusters[bi]...), clusters[bj]...)
		sort.Ints(merged)
		out = append(out, naiveMerge{distance: best, members: merged})
		clusters = append(clusters[:bj], clusters[bj+1:]...)
		clusters[bi] = merged
	}
	return out
}

func clusterDistance(vectors [][]float64, a, b []int, method Method) float64 {
	switch method {
	case Ward:
		ca, cb := mean(vectors, a), mean(vectors, b)
		na, nb := float64(len(a)), float64(len(b))
		return math.Sqrt(2*na*nb/(na+nb)) * euclid(ca, cb)
	case Single, Complete, Average:
		best := math.Inf(1)
		if method == Complete {
			best = math.Inf(-1)
		}
		var sum float64
		for _, i := range a {
			for _, j := range b {
				d := euclid(vectors[i], vectors[j])
				sum += d
				if method == Single && d < best {
					best = d
				}
				if method == Complete && d > best {
					best = d
				}
			}
		}
		if method == Average {
			return sum / float64(len(a)*len(b))
		}
		return best
	}
	return math.NaN()
}

func mean(vectors [][]float64, idx []int) []float64 {
	out := make([]float64, len(vectors[0]))
	for _, i := range idx {
		for k, v := range vectors[i] {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(idx))
	}
	return out
}

func euclid(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
