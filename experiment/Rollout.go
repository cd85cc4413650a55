package experiment

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	env "github.com/samuelfneumann/re3/environment"
	"github.com/samuelfneumann/re3/experiment/tracker"
	ts "github.com/samuelfneumann/re3/timestep"
)

// Batch is the data collected by a single rollout of T time steps in
// N environment instances
type Batch struct {
	// Observations shaped (T, N) + observation shape. The observation
	// at time step t is the one the action at time step t was selected
	// from.
	Observations *tensor.Dense

	// Extrinsic rewards shaped (T, N)
	Rewards *mat.Dense

	// Number of episodes finished in each instance
	Episodes []int
}

// Steps returns the number of time steps T in the batch
func (b *Batch) Steps() int {
	return b.Observations.Shape()[0]
}

// Instances returns the number of environment instances N in the batch
func (b *Batch) Instances() int {
	return b.Observations.Shape()[1]
}

// Rollout collects batches of observations by running a Policy in each
// of a number of environment instances. Environments are stepped
// concurrently, one goroutine per instance. Episodes that end during
// a rollout are reset, and the next rollout continues from the last
// TimeStep of the previous one.
type Rollout struct {
	envs     []env.Environment
	policies []Policy
	steps    int
	obsShape []int
	trackers [][]tracker.Tracker
	last     []ts.TimeStep
}

// NewRollout returns a new Rollout collecting steps time steps from
// each environment per rollout. Environment i is controlled by policy
// i. All environments must have the same observation shape.
func NewRollout(envs []env.Environment, policies []Policy,
	steps int) (*Rollout, error) {
	if len(envs) == 0 {
		return nil, errors.Errorf("newRollout: no environments")
	}
	if len(envs) != len(policies) {
		return nil, errors.Errorf("newRollout: %v environments but %v policies",
			len(envs), len(policies))
	}
	if steps < 1 {
		return nil, errors.Errorf("newRollout: illegal number of steps %v",
			steps)
	}

	obsShape := envs[0].ObservationSpec().Shape
	last := make([]ts.TimeStep, len(envs))
	for i, e := range envs {
		shape := e.ObservationSpec().Shape
		if !sameShape(shape, obsShape) {
			return nil, errors.Errorf("newRollout: environment %v has "+
				"observation shape %v, expected %v", i, shape, obsShape)
		}
		last[i] = e.CurrentTimeStep()
	}

	return &Rollout{
		envs:     envs,
		policies: policies,
		steps:    steps,
		obsShape: obsShape,
		trackers: make([][]tracker.Tracker, len(envs)),
		last:     last,
	}, nil
}

// Register registers a tracker.Tracker with environment instance i so
// that every TimeStep of that instance is tracked from now on. The
// current TimeStep of the instance is tracked immediately.
func (r *Rollout) Register(i int, t tracker.Tracker) error {
	if i < 0 || i >= len(r.envs) {
		return errors.Errorf("register: no environment instance %v", i)
	}
	if err := t.Track(r.last[i]); err != nil {
		return errors.Wrap(err, "register")
	}
	r.trackers[i] = append(r.trackers[i], t)
	return nil
}

// ObservationShape returns the shape of a single observation
func (r *Rollout) ObservationShape() []int {
	shape := make([]int, len(r.obsShape))
	copy(shape, r.obsShape)
	return shape
}

// Instances returns the number of environment instances N
func (r *Rollout) Instances() int {
	return len(r.envs)
}

// Steps returns the number of time steps T per rollout
func (r *Rollout) Steps() int {
	return r.steps
}

// Collect runs a single rollout and returns the collected Batch
func (r *Rollout) Collect() (*Batch, error) {
	n := len(r.envs)
	obsSize := 1
	for _, dim := range r.obsShape {
		obsSize *= dim
	}

	data := make([]float64, r.steps*n*obsSize)
	rewards := mat.NewDense(r.steps, n, nil)
	episodes := make([]int, n)

	g := new(errgroup.Group)
	for i := range r.envs {
		i := i
		g.Go(func() error {
			for t := 0; t < r.steps; t++ {
				step := r.last[i]

				offset := (t*n + i) * obsSize
				mat.Col(data[offset:offset+obsSize], 0, step.Observation)

				action := r.policies[i].SelectAction(step)
				next, last, err := r.envs[i].Step(action)
				if err != nil {
					return errors.Wrapf(err, "collect: instance %v", i)
				}
				rewards.Set(t, i, next.Reward)
				if err := r.track(i, next); err != nil {
					return err
				}

				if last {
					episodes[i]++
					if next, err = r.envs[i].Reset(); err != nil {
						return errors.Wrapf(err, "collect: instance %v", i)
					}
					if err := r.track(i, next); err != nil {
						return err
					}
				}
				r.last[i] = next
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shape := append([]int{r.steps, n}, r.obsShape...)
	obs := tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))

	return &Batch{Observations: obs, Rewards: rewards, Episodes: episodes}, nil
}

// track tracks a TimeStep of instance i with each registered Tracker
func (r *Rollout) track(i int, step ts.TimeStep) error {
	for _, t := range r.trackers[i] {
		if err := t.Track(step); err != nil {
			return errors.Wrapf(err, "collect: instance %v", i)
		}
	}
	return nil
}

// Save saves the data of all registered Trackers
func (r *Rollout) Save() error {
	for _, trackers := range r.trackers {
		for _, t := range trackers {
			if err := t.Save(); err != nil {
				return err
			}
		}
	}
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
