package puck

import (
	"math"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/re3/environment"
	ts "github.com/samuelfneumann/re3/timestep"
)

// Default goal of the Reach task, in the corner opposite the origin
const (
	GoalX      float64 = ArenaSize - 1.0
	GoalY      float64 = ArenaSize - 1.0
	GoalRadius float64 = 0.75
)

// Reach implements a sparse reward task in the Puck environment. The
// goal of the agent is to push the puck into a disk around a goal
// position.
//
// The reward is +1 on the timestep the puck enters the goal and 0
// otherwise. Episodes end after a step limit or once the goal is
// reached.
type Reach struct {
	env.Starter
	stepLimiter *env.StepLimit
	goal        [2]float64
	radius      float64
}

// NewReach creates and returns a new Reach task
func NewReach(s env.Starter, episodeSteps int, goalX, goalY,
	radius float64) *Reach {
	return &Reach{
		Starter:     s,
		stepLimiter: env.NewStepLimit(episodeSteps),
		goal:        [2]float64{goalX, goalY},
		radius:      radius,
	}
}

// AtGoal returns whether the puck in state is within the goal
func (r *Reach) AtGoal(state mat.Vector) bool {
	dx := state.AtVec(0) - r.goal[0]
	dy := state.AtVec(1) - r.goal[1]
	return math.Hypot(dx, dy) <= r.radius
}

// End checks if a TimeStep is the last in an episode. If so, it adjusts
// the TimeStep's StepType to timestep.Last and returns true.
func (r *Reach) End(t *ts.TimeStep) bool {
	if r.AtGoal(t.Observation) {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}
	return r.stepLimiter.End(t)
}

// GetReward returns the reward for an action taken in some state,
// resulting in a transition to the next state nextState.
func (r *Reach) GetReward(_ mat.Vector, _ mat.Vector,
	nextState mat.Vector) float64 {
	if r.AtGoal(nextState) {
		return 1.0
	}
	return 0.0
}
