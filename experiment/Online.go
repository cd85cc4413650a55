package experiment

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/re3/experiment/tracker"
	"github.com/samuelfneumann/re3/re3"
	"github.com/samuelfneumann/re3/utils/matutils"
)

// Result holds the rewards of a single rollout, each shaped (T, N)
type Result struct {
	Rollout   int
	Extrinsic *mat.Dense
	Intrinsic *mat.Dense
	Episodes  int

	// Mean intrinsic reward over instances at each time step
	StepMeans *mat.VecDense
}

// Online is an Experiment that collects rollouts online, computing
// intrinsic rewards after every rollout. The number of environment
// steps taken before a rollout determines the intrinsic reward
// coefficient of that rollout.
type Online struct {
	rollout      *Rollout
	re3          *re3.RE3
	maxRollouts  int
	currentRoll  int
	currentSteps int
	log          logrus.FieldLogger
}

// NewOnline creates and returns a new online experiment which runs
// rollouts rollouts collected by r, rewarding them with intrinsic
// rewards computed by e
func NewOnline(r *Rollout, e *re3.RE3, rollouts int) *Online {
	return &Online{
		rollout:     r,
		re3:         e,
		maxRollouts: rollouts,
		log:         logrus.StandardLogger(),
	}
}

// SetLogger sets the logger used to report rollout statistics
func (o *Online) SetLogger(l logrus.FieldLogger) {
	o.log = l
}

// Register registers a tracker.Tracker with environment instance i so
// that data generated during the experiment can be tracked and saved
func (o *Online) Register(i int, t tracker.Tracker) error {
	return o.rollout.Register(i, t)
}

// Done returns whether all rollouts have been run
func (o *Online) Done() bool {
	return o.currentRoll >= o.maxRollouts
}

// RunRollout collects a single rollout and computes its intrinsic
// rewards
func (o *Online) RunRollout() (Result, error) {
	batch, err := o.rollout.Collect()
	if err != nil {
		return Result{}, errors.Wrapf(err, "runRollout: rollout %v",
			o.currentRoll)
	}

	intrinsic, err := o.re3.IntrinsicRewards(batch.Observations,
		o.currentSteps)
	if err != nil {
		return Result{}, errors.Wrapf(err, "runRollout: rollout %v",
			o.currentRoll)
	}

	episodes := 0
	for _, e := range batch.Episodes {
		episodes += e
	}

	result := Result{
		Rollout:   o.currentRoll,
		Extrinsic: batch.Rewards,
		Intrinsic: intrinsic,
		Episodes:  episodes,
		StepMeans: matutils.RowMean(intrinsic),
	}

	in := matutils.Summarize(intrinsic)
	ex := matutils.Summarize(batch.Rewards)
	o.log.WithFields(logrus.Fields{
		"rollout":       o.currentRoll,
		"envSteps":      o.currentSteps,
		"coefficient":   o.coefficient(),
		"episodes":      episodes,
		"intrinsicMean": in.Mean,
		"intrinsicStd":  in.Std,
		"intrinsicMin":  in.Min,
		"intrinsicMax":  in.Max,
		"extrinsicMean": ex.Mean,
	}).Info("rollout finished")
	o.log.WithField("rollout", o.currentRoll).Debugf("mean intrinsic "+
		"reward per time step: %v", matutils.Format(result.StepMeans.T()))

	o.currentRoll++
	o.currentSteps += batch.Steps() * batch.Instances()

	return result, nil
}

// coefficient returns the current intrinsic reward coefficient
func (o *Online) coefficient() float64 {
	c := o.re3.Config()
	return re3.Coefficient(c.Beta, c.Kappa, o.currentSteps)
}

// Run runs all remaining rollouts of the experiment
func (o *Online) Run() error {
	for !o.Done() {
		if _, err := o.RunRollout(); err != nil {
			return err
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	return o.rollout.Save()
}
