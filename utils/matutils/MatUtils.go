// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// Summary holds summary statistics of the elements of a matrix
type Summary struct {
	Mean, Std float64
	Min, Max  float64
}

// String implements the fmt.Stringer interface
func (s Summary) String() string {
	return fmt.Sprintf("{Mean: %.6g Std: %.6g Min: %.6g Max: %.6g}", s.Mean,
		s.Std, s.Min, s.Max)
}

// Summarize returns the summary statistics of all elements of a
// matrix. The standard deviation is the unbiased estimate, and is NaN
// for matrices with a single element.
func Summarize(X mat.Matrix) Summary {
	r, c := X.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, X.At(i, j))
		}
	}

	mean, std := stat.MeanStdDev(data, nil)
	return Summary{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(data),
		Max:  floats.Max(data),
	}
}

// RowMean compute and returns the mean of the rows of a matrix
func RowMean(matrix *mat.Dense) *mat.VecDense {
	r, _ := matrix.Dims()
	rowMeans := make([]float64, r)

	for i := 0; i < r; i++ {
		rowMeans[i] = stat.Mean(matrix.RawRowView(i), nil)
	}
	return mat.NewVecDense(r, rowMeans)
}

// VecClip performs an element-wise clipping of a vector's values such
// that each value is at least the corresponding value of min and at
// most the corresponding value of max
func VecClip(a *mat.VecDense, min, max mat.Vector) {
	if a.Len() != min.Len() || a.Len() != max.Len() {
		panic(fmt.Sprintf("vecClip: cannot clip vector of length %v to "+
			"bounds of length %v and %v", a.Len(), min.Len(), max.Len()))
	}

	for i := 0; i < a.Len(); i++ {
		value := a.AtVec(i)

		if value < min.AtVec(i) {
			a.SetVec(i, min.AtVec(i))
		} else if value > max.AtVec(i) {
			a.SetVec(i, max.AtVec(i))
		}
	}
}

// VecFloor performs an element-wise floor division of a vector by some
// constant b
func VecFloor(a *mat.VecDense, b float64) {
	for i := 0; i < a.Len(); i++ {
		mod := math.Floor(a.AtVec(i) / b)
		a.SetVec(i, mod)
	}
}
