package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or
// continuous). Consumers of a Spec should treat any Cardinality other
// than Discrete or Continuous as Unsupported.
type Cardinality string

const (
	Continuous  Cardinality = "Continuous"
	Discrete    Cardinality = "Discrete"
	Unsupported Cardinality = "Unsupported"
)

// Supported returns whether the Cardinality is Discrete or Continuous
func (c Cardinality) Supported() bool {
	return c == Discrete || c == Continuous
}

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment. Bounds are given over the flattened values described
// by the Spec.
type Spec struct {
	Shape      []int
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape []int, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	size := 1
	for _, dim := range shape {
		size *= dim
	}

	if size != lowerBound.Len() {
		panic(fmt.Sprintf("shape size %v must match lower bounds length %v",
			size, lowerBound.Len()))
	}
	if size != upperBound.Len() {
		panic(fmt.Sprintf("shape size %v must match upper bounds length %v",
			size, upperBound.Len()))
	}

	s := make([]int, len(shape))
	copy(s, shape)
	return Spec{s, t, lowerBound, upperBound, cardinality}
}

// Rank returns the number of dimensions of the values described
func (s Spec) Rank() int {
	return len(s.Shape)
}

// Size returns the number of scalars in a single value described
func (s Spec) Size() int {
	size := 1
	for _, dim := range s.Shape {
		size *= dim
	}
	return size
}

// NumActions returns the number of actions of a 1-dimensional
// Discrete action Spec, assuming integer actions between the lower
// and upper bound inclusive.
func (s Spec) NumActions() (int, error) {
	if s.Cardinality != Discrete || s.Size() != 1 {
		return 0, fmt.Errorf("numActions: not a 1-dimensional discrete "+
			"spec: %v %v", s.Cardinality, s.Shape)
	}
	return int(s.UpperBound.AtVec(0)-s.LowerBound.AtVec(0)) + 1, nil
}
