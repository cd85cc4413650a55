// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/re3/environment"
	"github.com/samuelfneumann/re3/environment/box2d/puck"
	"github.com/samuelfneumann/re3/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/re3/environment/wrappers"
	ts "github.com/samuelfneumann/re3/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Cartpole EnvName = "Cartpole"
	Puck     EnvName = "Puck"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	Cartpole			Balance
//	Puck				Reach
type TaskName string

// Tasks available for configuration
const (
	Balance TaskName = "Balance"
	Reach   TaskName = "Reach"
)

// Default frame size of pixel observations
const (
	DefaultHeight = 84
	DefaultWidth  = 84
)

// Config implements a specific configuration of a specific environment
// and specific task. Not all environments can have all tasks.
//
// If Pixels is set, the environment is wrapped so that observations
// are (1, Height, Width) grayscale frames of the rendered environment.
type Config struct {
	Environment       EnvName
	Task              TaskName
	ContinuousActions bool
	EpisodeCutoff     uint
	Discount          float64
	Pixels            bool
	Height            int
	Width             int
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, taskName TaskName, continuousActions bool,
	episodeCutoff uint, discount float64, pixels bool) Config {
	return Config{
		Environment:       envName,
		Task:              taskName,
		ContinuousActions: continuousActions,
		EpisodeCutoff:     episodeCutoff,
		Discount:          discount,
		Pixels:            pixels,
		Height:            DefaultHeight,
		Width:             DefaultWidth,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	var (
		e    env.Environment
		step ts.TimeStep
		err  error
	)

	switch c.Environment {
	case Cartpole:
		e, step, err = CreateCartpole(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case Puck:
		e, step, err = CreatePuck(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	default:
		return nil, ts.TimeStep{}, errors.Errorf("create: cannot create "+
			"environment %v, no such environment", c.Environment)
	}
	if err != nil || !c.Pixels {
		return e, step, err
	}

	r, ok := e.(wrappers.Renderer)
	if !ok {
		return nil, ts.TimeStep{}, errors.Errorf("create: environment %v "+
			"cannot be rendered", c.Environment)
	}

	height, width := c.Height, c.Width
	if height == 0 {
		height = DefaultHeight
	}
	if width == 0 {
		width = DefaultWidth
	}
	return wrappers.NewPixels(r, height, width)
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and default task parameters.
func CreateCartpole(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (env.Environment, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	var task env.Task
	switch taskName {
	case Balance:
		task = cartpole.NewBalance(s, cutoff, cartpole.FailAngle)

	default:
		return nil, ts.TimeStep{}, errors.Errorf("createCartpole: Cartpole "+
			"environment has no task %v", taskName)
	}

	if continuousActions {
		return cartpole.NewContinuous(task, discount)
	}
	return cartpole.NewDiscrete(task, discount)
}

// CreatePuck is a factory for creating the Puck environment with the
// puck starting near the centre of the arena. The Reach task places
// its goal in the corner opposite the origin.
func CreatePuck(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (env.Environment, ts.TimeStep, error) {
	centre := r1.Interval{
		Min: puck.ArenaSize/2 - 1,
		Max: puck.ArenaSize/2 + 1,
	}
	s := env.NewUniformStarter([]r1.Interval{centre, centre}, seed)

	var task env.Task
	switch taskName {
	case Reach:
		task = puck.NewReach(s, cutoff, puck.GoalX, puck.GoalY,
			puck.GoalRadius)

	default:
		return nil, ts.TimeStep{}, errors.Errorf("createPuck: Puck "+
			"environment has no task %v", taskName)
	}

	if continuousActions {
		return puck.NewContinuous(task, discount)
	}
	return puck.NewDiscrete(task, discount)
}
