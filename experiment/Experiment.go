// Package experiment implements functionality for running an experiment
// in which intrinsic rewards are computed over rollouts collected from
// a number of environment instances.
package experiment

import (
	"github.com/pkg/errors"

	env "github.com/samuelfneumann/re3/environment"
	"github.com/samuelfneumann/re3/environment/envconfig"
	"github.com/samuelfneumann/re3/experiment/tracker"
	"github.com/samuelfneumann/re3/re3"
)

// Interface Experiment outlines structs that can run experiments.
// The Run() method will run all rollouts of the experiment, and the
// RunRollout() method will run a single rollout.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep of an environment instance to the Trackers
// registered with that instance using the Tracker's Track() method.
type Experiment interface {
	Run() error
	RunRollout() (Result, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to environment instance i of the
	// (possibly already running) experiment
	Register(i int, t tracker.Tracker) error
}

// Type is a type of Experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	Rollouts  int // Number of rollouts
	Steps     int // Time steps T per rollout
	Instances int // Environment instances N
	EnvConf   envconfig.Config
	RE3Conf   re3.Config
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return errors.Errorf("validate: no such experiment type %v", c.Type)
	}
	if c.Rollouts < 1 || c.Steps < 1 || c.Instances < 1 {
		return errors.Errorf("validate: rollouts (%v), steps (%v) and "+
			"instances (%v) must be positive", c.Rollouts, c.Steps,
			c.Instances)
	}
	return c.RE3Conf.Validate()
}

// CreateExp creates the Experiment described by the Config. Each
// environment instance and its random policy is seeded differently,
// starting from seed.
func (c Config) CreateExp(seed uint64) (Experiment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	envs := make([]env.Environment, c.Instances)
	policies := make([]Policy, c.Instances)
	for i := range envs {
		e, _, err := c.EnvConf.Create(seed + uint64(i))
		if err != nil {
			return nil, errors.Wrap(err, "createExp: could not create "+
				"environment")
		}
		envs[i] = e

		p, err := NewRandom(e.ActionSpec(), seed+uint64(c.Instances+i))
		if err != nil {
			return nil, errors.Wrap(err, "createExp: could not create policy")
		}
		policies[i] = p
	}

	rollout, err := NewRollout(envs, policies, c.Steps)
	if err != nil {
		return nil, err
	}

	r, err := re3.New(envs[0].ObservationSpec(), envs[0].ActionSpec(),
		c.RE3Conf)
	if err != nil {
		return nil, errors.Wrap(err, "createExp: could not create RE3")
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(rollout, r, c.Rollouts), nil
	}

	return nil, errors.Errorf("createExp: no such experiment type %v", c.Type)
}
