// Package entropy implements particle-based state entropy estimates.
// Given a window of embeddings, the entropy at each point is estimated
// from the distance to its k-th nearest neighbour within the window:
//
//	H(t) = log(‖e(t) - e(kNN(t))‖ + 1)
//
// Distances are exact Euclidean distances, so the distance from a
// point to itself is always 0 and each point is its own nearest
// neighbour.
package entropy

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultK is the default neighbour rank
const DefaultK = 3

// ErrInvalidK is returned when the neighbour rank is not positive
var ErrInvalidK = errors.New("neighbour rank k must be positive")

// Rank returns the 1-based rank, among the t distances from a point to
// all points in a window of size t, of the distance used to estimate
// entropy. The self-distance 0 always holds rank 1, so rank k+1 is the
// k-th nearest other point.
//
// Windows with fewer than k+1 points are clamped to rank t, the
// farthest point in the window.
func Rank(t, k int) int {
	if k >= t {
		return t
	}
	return k + 1
}

// Clamped returns whether the neighbour rank for a window of size t
// is clamped by Rank
func Clamped(t, k int) bool {
	return k >= t
}

// Distances returns the symmetric matrix of Euclidean distances between
// all rows of embeddings. The diagonal is exactly 0.
func Distances(embeddings *mat.Dense) *mat.SymDense {
	t, _ := embeddings.Dims()
	dists := mat.NewSymDense(t, nil)

	for i := 0; i < t; i++ {
		row := embeddings.RawRowView(i)
		for j := i + 1; j < t; j++ {
			dists.SetSym(i, j, floats.Distance(row, embeddings.RawRowView(j),
				2))
		}
	}
	return dists
}

// Neighbours returns, for each point in a window, the distance to and
// index of the point holding neighbour rank Rank(t, k). Ties are broken
// in favour of lower indices, with the self-distance always ranked
// before any other zero distance.
func Neighbours(dists *mat.SymDense, k int) ([]float64, []int, error) {
	if k < 1 {
		return nil, nil, errors.Wrapf(ErrInvalidK, "neighbours: k = %d", k)
	}

	t := dists.Symmetric()
	rank := Rank(t, k)

	dist := make([]float64, t)
	index := make([]int, t)
	inds := make([]int, t)
	row := make([]float64, t)

	for i := 0; i < t; i++ {
		// Place the self-distance first so that the stable sort keeps
		// it at rank 1 regardless of duplicate points
		inds[0] = i
		pos := 1
		for j := 0; j < t; j++ {
			if j != i {
				inds[pos] = j
				pos++
			}
		}

		for j := 0; j < t; j++ {
			row[j] = dists.At(i, j)
		}
		sort.SliceStable(inds, func(a, b int) bool {
			return row[inds[a]] < row[inds[b]]
		})

		index[i] = inds[rank-1]
		dist[i] = row[index[i]]
	}

	return dist, index, nil
}

// Estimate returns the entropy estimate of each point in a window of
// embeddings, one per row, using the neighbour rank Rank(t, k). An
// empty window returns an empty estimate.
func Estimate(embeddings *mat.Dense, k int) ([]float64, error) {
	if k < 1 {
		return nil, errors.Wrapf(ErrInvalidK, "estimate: k = %d", k)
	}
	if embeddings.IsEmpty() {
		return []float64{}, nil
	}

	dist, _, err := Neighbours(Distances(embeddings), k)
	if err != nil {
		return nil, err
	}

	for i := range dist {
		dist[i] = math.Log1p(dist[i])
	}
	return dist, nil
}
