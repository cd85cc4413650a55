package puck

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/re3/environment"
	ts "github.com/samuelfneumann/re3/timestep"
)

const (
	ContinuousActionDims int     = 2
	MinContinuousAction  float64 = -1.0
	MaxContinuousAction  float64 = 1.0

	// Discrete actions: coast, then thrust left, right, down and up
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 4
)

// ErrIllegalAction is returned when an action is outside the action
// space of the environment
var ErrIllegalAction = errors.New("illegal action")

// directions maps each discrete action to its thrust
var directions = [][2]float64{
	{0, 0},
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// Continuous implements the Puck environment with continuous actions,
// the thrust along the x and y axes in [-1, 1].
//
// Continuous implements the environment.Environment interface
type Continuous struct {
	*base
}

// NewContinuous constructs a new Puck environment with continuous
// actions
func NewContinuous(t env.Task, discount float64) (*Continuous,
	ts.TimeStep, error) {
	base, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, errors.Wrap(err, "newContinuous")
	}
	return &Continuous{base}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Continuous) ActionSpec() env.Spec {
	lowerBound := mat.NewVecDense(ContinuousActionDims,
		[]float64{MinContinuousAction, MinContinuousAction})
	upperBound := mat.NewVecDense(ContinuousActionDims,
		[]float64{MaxContinuousAction, MaxContinuousAction})

	return env.NewSpec([]int{ContinuousActionDims}, env.Action, lowerBound,
		upperBound, env.Continuous)
}

// Step takes one environmental step given action a and returns the next
// timestep and whether or not the episode has ended
func (c *Continuous) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() != ContinuousActionDims {
		return ts.TimeStep{}, false, errors.Wrapf(ErrIllegalAction,
			"step: actions should be %v-dimensional", ContinuousActionDims)
	}
	for i := 0; i < a.Len(); i++ {
		if v := a.AtVec(i); v < MinContinuousAction || v > MaxContinuousAction {
			return ts.TimeStep{}, false, errors.Wrapf(ErrIllegalAction,
				"step: %v ∉ [-1, 1]", v)
		}
	}

	return c.thrust(a, a.AtVec(0), a.AtVec(1))
}

// Discrete implements the Puck environment with discrete actions:
//
//	0: Coast
//	1: Thrust left
//	2: Thrust right
//	3: Thrust down
//	4: Thrust up
//
// Discrete implements the environment.Environment interface
type Discrete struct {
	*base
}

// NewDiscrete constructs a new Puck environment with discrete actions
func NewDiscrete(t env.Task, discount float64) (*Discrete, ts.TimeStep,
	error) {
	base, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, errors.Wrap(err, "newDiscrete")
	}
	return &Discrete{base}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (d *Discrete) ActionSpec() env.Spec {
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return env.NewSpec([]int{1}, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// Step takes one environmental step given action a and returns the next
// timestep and whether or not the episode has ended
func (d *Discrete) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() != 1 {
		return ts.TimeStep{}, false, errors.Wrap(ErrIllegalAction,
			"step: actions should be 1-dimensional")
	}

	action := int(a.AtVec(0))
	if float64(action) != a.AtVec(0) || action < MinDiscreteAction ||
		action > MaxDiscreteAction {
		return ts.TimeStep{}, false, errors.Wrapf(ErrIllegalAction,
			"step: %v ∉ {%v, ..., %v}", a.AtVec(0), MinDiscreteAction,
			MaxDiscreteAction)
	}

	dir := directions[action]
	return d.thrust(a, dir[0], dir[1])
}
