package matutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestSummarize(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	s := Summarize(X)

	if s.Mean != 3.5 {
		t.Errorf("mean want(3.5) have(%v)", s.Mean)
	}
	if want := math.Sqrt(3.5); !scalar.EqualWithinAbs(s.Std, want, 1e-12) {
		t.Errorf("std want(%v) have(%v)", want, s.Std)
	}
	if s.Min != 1 || s.Max != 6 {
		t.Errorf("min, max want(1, 6) have(%v, %v)", s.Min, s.Max)
	}
}

func TestRowMean(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 3, -2, 2})
	have := RowMean(X).RawVector().Data
	if want := []float64{2, 0}; !floats.Equal(want, have) {
		t.Errorf("want(%v) have(%v)", want, have)
	}
}

func TestVecClipFloor(t *testing.T) {
	a := mat.NewVecDense(3, []float64{-1.5, 2.7, 9.2})
	VecFloor(a, 1)
	VecClip(a, mat.NewVecDense(3, []float64{0, 0, 0}),
		mat.NewVecDense(3, []float64{2, 2, 5}))

	if want := []float64{0, 2, 5}; !floats.Equal(want, a.RawVector().Data) {
		t.Errorf("want(%v) have(%v)", want, a.RawVector().Data)
	}
}
