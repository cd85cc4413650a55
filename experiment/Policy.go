package experiment

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	env "github.com/samuelfneumann/re3/environment"
	ts "github.com/samuelfneumann/re3/timestep"
	"github.com/samuelfneumann/re3/utils/matutils"
)

// Policy selects actions in an environment
type Policy interface {
	SelectAction(t ts.TimeStep) *mat.VecDense
}

// Random is a Policy which selects actions uniformly at random from
// the bounds of an action specification, ignoring observations.
// Discrete actions are drawn uniformly from the integers between the
// bounds inclusive.
type Random struct {
	dist     *distmv.Uniform
	discrete bool
	low      mat.Vector
	high     mat.Vector
}

// NewRandom returns a new Random policy for actions described by
// action
func NewRandom(action env.Spec, seed uint64) (*Random, error) {
	if !action.Cardinality.Supported() {
		return nil, errors.Errorf("newRandom: unsupported action cardinality "+
			"%v", action.Cardinality)
	}

	discrete := action.Cardinality == env.Discrete
	bounds := make([]r1.Interval, action.Size())
	for i := range bounds {
		bounds[i] = r1.Interval{
			Min: action.LowerBound.AtVec(i),
			Max: action.UpperBound.AtVec(i),
		}
		if discrete {
			bounds[i].Max++
		}
		if bounds[i].Min > bounds[i].Max {
			return nil, errors.Errorf("newRandom: illegal action bounds %v",
				bounds[i])
		}
	}

	src := rand.NewSource(seed)
	return &Random{
		dist:     distmv.NewUniform(bounds, src),
		discrete: discrete,
		low:      action.LowerBound,
		high:     action.UpperBound,
	}, nil
}

// SelectAction returns a random action
func (r *Random) SelectAction(_ ts.TimeStep) *mat.VecDense {
	action := mat.NewVecDense(r.dist.Dim(), r.dist.Rand(nil))
	if r.discrete {
		matutils.VecFloor(action, 1.0)
		matutils.VecClip(action, r.low, r.high)
	}
	return action
}
