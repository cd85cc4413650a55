package entropy

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestRank(t *testing.T) {
	for _, test := range []struct {
		t, k, want int
		clamped    bool
	}{
		{t: 10, k: 3, want: 4},
		{t: 4, k: 3, want: 4},
		{t: 3, k: 3, want: 3, clamped: true},
		{t: 1, k: 3, want: 1, clamped: true},
		{t: 2, k: 1, want: 2},
		{t: 5, k: math.MaxInt, want: 5, clamped: true},
		{t: 0, k: math.MaxInt, want: 0, clamped: true},
	} {
		if have := Rank(test.t, test.k); have != test.want {
			t.Errorf("Rank(%v, %v): want(%v) have(%v)", test.t, test.k,
				test.want, have)
		}
		if have := Clamped(test.t, test.k); have != test.clamped {
			t.Errorf("Clamped(%v, %v): want(%v) have(%v)", test.t, test.k,
				test.clamped, have)
		}
	}
}

func TestDistances(t *testing.T) {
	emb := mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		0, 1,
	})
	dists := Distances(emb)

	want := [][]float64{
		{0, 5, 1},
		{5, 0, math.Sqrt(9 + 9)},
		{1, math.Sqrt(9 + 9), 0},
	}
	for i := range want {
		for j := range want[i] {
			if !scalar.EqualWithinAbs(dists.At(i, j), want[i][j], 1e-12) {
				t.Errorf("distance (%v, %v): want(%v) have(%v)", i, j,
					want[i][j], dists.At(i, j))
			}
		}
	}
}

func TestNeighboursSelfDistance(t *testing.T) {
	// All points identical: every distance is 0, and rank 1 must be
	// the point itself
	emb := mat.NewDense(4, 2, []float64{1, 1, 1, 1, 1, 1, 1, 1})

	dist, _, err := Neighbours(Distances(emb), 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range dist {
		if dist[i] != 0 {
			t.Errorf("point %v: want distance 0 have %v", i, dist[i])
		}
	}

	// Rank 1 is tested through a window of size 1
	single := mat.NewDense(1, 2, []float64{5, 5})
	_, index, err := Neighbours(Distances(single), 3)
	if err != nil {
		t.Fatal(err)
	}
	if index[0] != 0 {
		t.Errorf("single point: want neighbour 0 have %v", index[0])
	}
}

func TestNeighboursFarthestWhenFull(t *testing.T) {
	// T = 4, k = 3: rank 4 of 4 is the farthest point in the window
	emb := mat.NewDense(4, 1, []float64{0, 1, 3, 10})

	dist, index, err := Neighbours(Distances(emb), 3)
	if err != nil {
		t.Fatal(err)
	}

	wantIndex := []int{3, 3, 3, 0}
	wantDist := []float64{10, 9, 7, 10}
	for i := range wantIndex {
		if index[i] != wantIndex[i] {
			t.Errorf("point %v: neighbour want(%v) have(%v)", i,
				wantIndex[i], index[i])
		}
		if dist[i] != wantDist[i] {
			t.Errorf("point %v: distance want(%v) have(%v)", i, wantDist[i],
				dist[i])
		}
	}
}

func TestNeighboursClamped(t *testing.T) {
	// T = 3 < k + 1 = 4: clamped to rank 3, the farthest point
	emb := mat.NewDense(3, 1, []float64{0, 2, 5})

	dist, _, err := Neighbours(Distances(emb), 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{5, 3, 5}
	for i := range want {
		if dist[i] != want[i] {
			t.Errorf("point %v: want(%v) have(%v)", i, want[i], dist[i])
		}
	}
}

func TestEstimateMaxK(t *testing.T) {
	emb := mat.NewDense(3, 1, []float64{0, 2, 5})

	est, err := Estimate(emb, math.MaxInt)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{math.Log1p(5), math.Log1p(3), math.Log1p(5)}
	for i := range want {
		if !scalar.EqualWithinAbs(est[i], want[i], 1e-12) {
			t.Errorf("point %v: want(%v) have(%v)", i, want[i], est[i])
		}
	}
}

func TestEstimateOutlier(t *testing.T) {
	emb := mat.NewDense(5, 2, []float64{
		1, 1,
		1, 1,
		100, -50,
		1, 1,
		1, 1,
	})

	est, err := Estimate(emb, 3)
	if err != nil {
		t.Fatal(err)
	}

	for i, h := range est {
		if i == 2 {
			continue
		}
		if !(est[2] > h) {
			t.Errorf("outlier entropy %v not greater than point %v "+
				"entropy %v", est[2], i, h)
		}
	}
}

func TestEstimateNonNegative(t *testing.T) {
	emb := mat.NewDense(6, 3, []float64{
		-1, 2, 0.5,
		3, -4, 1,
		0, 0, 0,
		0.1, 0.2, 0.3,
		-7, 1, 2,
		5, 5, -5,
	})
	for k := 1; k < 8; k++ {
		est, err := Estimate(emb, k)
		if err != nil {
			t.Fatal(err)
		}
		for i, h := range est {
			if h < 0 || math.IsNaN(h) {
				t.Errorf("k = %v, point %v: entropy %v < 0", k, i, h)
			}
		}
	}
}

func TestEstimateScaling(t *testing.T) {
	data := []float64{0, 1, 2, 2, 5, -1, 3, 3, -2, 4}
	emb := mat.NewDense(5, 2, data)

	c := 2.5
	var scaled mat.Dense
	scaled.Scale(c, emb)

	base, _, err := Neighbours(Distances(emb), 2)
	if err != nil {
		t.Fatal(err)
	}
	scaledDist, _, err := Neighbours(Distances(&scaled), 2)
	if err != nil {
		t.Fatal(err)
	}

	for i := range base {
		if !scalar.EqualWithinAbs(scaledDist[i], c*base[i], 1e-12) {
			t.Errorf("point %v: want(%v) have(%v)", i, c*base[i],
				scaledDist[i])
		}
	}
}

func TestEstimateLogTransform(t *testing.T) {
	emb := mat.NewDense(2, 1, []float64{0, math.E - 1})

	est, err := Estimate(emb, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range est {
		if !scalar.EqualWithinAbs(h, 1, 1e-12) {
			t.Errorf("point %v: want(1) have(%v)", i, h)
		}
	}
}

func TestEstimateInvalidK(t *testing.T) {
	emb := mat.NewDense(2, 1, []float64{0, 1})
	if _, err := Estimate(emb, 0); !errors.Is(err, ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, have %v", err)
	}
	if _, _, err := Neighbours(Distances(emb), -1); !errors.Is(err,
		ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, have %v", err)
	}
}

func TestEstimateEmpty(t *testing.T) {
	est, err := Estimate(&mat.Dense{}, DefaultK)
	if err != nil {
		t.Fatal(err)
	}
	if len(est) != 0 {
		t.Errorf("want empty estimate have %v", est)
	}
}

func BenchmarkEstimate(b *testing.B) {
	t, d := 128, 128
	data := make([]float64, t*d)
	for i := range data {
		data[i] = math.Sin(float64(i))
	}
	emb := mat.NewDense(t, d, data)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Estimate(emb, DefaultK); err != nil {
			b.Fatal(err)
		}
	}
}
