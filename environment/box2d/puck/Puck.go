// Package puck implements the Puck environment, a rigid square puck
// pushed around a walled, frictionless arena by thrusters. The arena
// is simulated with Box2D and viewed from above, so there is no
// gravity; the puck slows down through linear damping and bounces off
// the walls.
package puck

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/re3/environment"
	ts "github.com/samuelfneumann/re3/timestep"
)

const (
	FPS float64 = 50

	// Arena side length in world units
	ArenaSize float64 = 10.0

	// Half the side length of the puck
	HalfSize float64 = 0.25

	Density     float64 = 1.0
	Restitution float64 = 0.6
	Damping     float64 = 0.5

	// Impulse applied by a thruster at full power
	ThrustPower float64 = 0.2

	// Solver iterations per step
	VelocityIterations int = 6
	PositionIterations int = 2

	ObservationDims int = 4
	StartDims       int = 2
)

// Box2D body types
const (
	staticBody  = 0
	dynamicBody = 2
)

// ErrIllegalStart is returned when a Starter places the puck outside
// the arena
var ErrIllegalStart = errors.New("illegal starting position")

// base implements the simulation shared by the discrete and continuous
// action Puck environments.
//
// The state features are the puck's x and y position in [0, ArenaSize]
// and its x and y velocity.
type base struct {
	env.Task
	lastStep ts.TimeStep
	discount float64

	world box2d.B2World
	walls []*box2d.B2Body
	puck  *box2d.B2Body

	positionBounds r1.Interval
}

// newBase returns a new base Puck environment
func newBase(t env.Task, discount float64) (*base, ts.TimeStep, error) {
	p := &base{
		Task:     t,
		discount: discount,
		positionBounds: r1.Interval{
			Min: HalfSize,
			Max: ArenaSize - HalfSize,
		},
	}

	firstStep, err := p.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return p, firstStep, nil
}

// Reset rebuilds the arena with the puck at rest at a position drawn
// from the environment Starter
func (p *base) Reset() (ts.TimeStep, error) {
	start := p.Start()
	if start.Len() != StartDims {
		return ts.TimeStep{}, errors.Wrapf(ErrIllegalStart, "reset: "+
			"starting state should be %v-dimensional", StartDims)
	}
	x, y := start.AtVec(0), start.AtVec(1)
	if !within(x, p.positionBounds) || !within(y, p.positionBounds) {
		return ts.TimeStep{}, errors.Wrapf(ErrIllegalStart, "reset: (%v, "+
			"%v) not within %v", x, y, p.positionBounds)
	}

	p.world = box2d.MakeB2World(box2d.B2Vec2{X: 0, Y: 0})
	p.buildWalls()
	p.buildPuck(x, y)

	state := p.state()
	startStep := ts.New(ts.First, 0, p.discount, state, 0)
	p.lastStep = startStep

	return startStep, nil
}

// buildWalls adds the four static walls enclosing the arena
func (p *base) buildWalls() {
	corners := []box2d.B2Vec2{
		box2d.MakeB2Vec2(0, 0),
		box2d.MakeB2Vec2(0, ArenaSize),
		box2d.MakeB2Vec2(ArenaSize, ArenaSize),
		box2d.MakeB2Vec2(ArenaSize, 0),
	}

	p.walls = make([]*box2d.B2Body, len(corners))
	for i := range corners {
		def := box2d.NewB2BodyDef()
		def.Type = staticBody
		p.walls[i] = p.world.CreateBody(def)

		shape := box2d.NewB2EdgeShape()
		shape.Set(corners[i], corners[(i+1)%len(corners)])

		fix := box2d.MakeB2FixtureDef()
		fix.Shape = shape
		p.walls[i].CreateFixtureFromDef(&fix)
	}
}

// buildPuck adds the puck at rest at (x, y)
func (p *base) buildPuck(x, y float64) {
	def := box2d.MakeB2BodyDef()
	def.Type = dynamicBody
	def.Position = box2d.MakeB2Vec2(x, y)
	def.LinearDamping = Damping
	def.FixedRotation = true
	p.puck = p.world.CreateBody(&def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(HalfSize, HalfSize)

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Density = Density
	fix.Friction = 0
	fix.Restitution = Restitution
	p.puck.CreateFixtureFromDef(&fix)
}

// state returns the current state observation of the puck
func (p *base) state() *mat.VecDense {
	pos := p.puck.GetPosition()
	vel := p.puck.GetLinearVelocity()
	return mat.NewVecDense(ObservationDims, []float64{pos.X, pos.Y, vel.X,
		vel.Y})
}

// CurrentTimeStep returns the last TimeStep that occurred in the
// environment
func (p *base) CurrentTimeStep() ts.TimeStep {
	return p.lastStep
}

// ObservationSpec returns the observation specification of the
// environment
func (p *base) ObservationSpec() env.Spec {
	lowerBound := mat.NewVecDense(ObservationDims, []float64{
		p.positionBounds.Min, p.positionBounds.Min,
		-math.MaxFloat64, -math.MaxFloat64,
	})
	upperBound := mat.NewVecDense(ObservationDims, []float64{
		p.positionBounds.Max, p.positionBounds.Max,
		math.MaxFloat64, math.MaxFloat64,
	})

	return env.NewSpec([]int{ObservationDims}, env.Observation, lowerBound,
		upperBound, env.Continuous)
}

// thrust applies a thrust of (fx, fy), each in [-1, 1], to the centre
// of the puck and advances the simulation by one frame
func (p *base) thrust(a *mat.VecDense, fx, fy float64) (ts.TimeStep, bool,
	error) {
	impulse := box2d.MakeB2Vec2(fx*ThrustPower, fy*ThrustPower)
	p.puck.ApplyLinearImpulse(impulse, p.puck.GetPosition(), true)
	p.world.Step(1.0/FPS, VelocityIterations, PositionIterations)

	nextState := p.state()
	reward := p.GetReward(p.lastStep.Observation, a, nextState)
	nextStep := ts.New(ts.Mid, reward, p.discount, nextState,
		p.lastStep.Number+1)

	p.End(&nextStep)
	p.lastStep = nextStep

	return nextStep, nextStep.Last(), nil
}

func (p *base) String() string {
	state := p.lastStep.Observation
	return fmt.Sprintf("Puck  |  Position: (%.3f, %.3f)  |  Velocity: "+
		"(%.3f, %.3f)", state.AtVec(0), state.AtVec(1), state.AtVec(2),
		state.AtVec(3))
}

// within returns whether v is in the closed interval i
func within(v float64, i r1.Interval) bool {
	return v >= i.Min && v <= i.Max
}
