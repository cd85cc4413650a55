// Package re3 implements the Random Encoders for Efficient Exploration
// (RE3) intrinsic reward. Observations collected over a rollout are
// embedded by a frozen, randomly initialized encoder, and each
// embedding is rewarded by a k-nearest neighbour estimate of the state
// entropy of the rollout of the environment instance it was collected
// in. Rewards are scaled by a coefficient which decays with the number
// of environment steps taken so far.
package re3

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/re3/entropy"
	env "github.com/samuelfneumann/re3/environment"
	"github.com/samuelfneumann/re3/network"
)

var (
	// ErrUnsupportedActionSpace is returned when constructing an RE3
	// for an action space that is neither discrete nor continuous
	ErrUnsupportedActionSpace = errors.New("unsupported action space")

	// ErrNegativeTimeSteps is returned when intrinsic rewards are
	// requested for a negative number of time steps
	ErrNegativeTimeSteps = errors.New("negative time steps")

	// ErrUnsupportedDevice is returned for devices other than the CPU
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrInvalidConfig is returned when a Config is illegal
	ErrInvalidConfig = errors.New("invalid config")
)

var log = logrus.StandardLogger()

// SetLogger sets the logger used by the package
func SetLogger(l *logrus.Logger) {
	log = l
}

// RE3 computes intrinsic rewards for batches of observations collected
// from N parallel environment instances over T time steps. An RE3 is
// safe for concurrent use.
type RE3 struct {
	encoder     network.Encoder
	actionShape []int
	config      Config
}

// New returns a new RE3 for environments with the given observation
// and action specifications.
//
// The action specification is only used to validate that the action
// space is discrete or continuous. Observations must be rank 1, in
// which case a fully connected encoder is used, or rank 3 shaped
// (channels, height, width), in which case a convolutional encoder
// is used.
func New(observation, action env.Spec, c Config) (*RE3, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c, err := c.withDefaults()
	if err != nil {
		return nil, err
	}

	shape, err := actionShape(action)
	if err != nil {
		return nil, err
	}

	encoder, err := network.NewEncoder(observation.Shape, c.EmbeddingSize,
		c.EncodeBatchSize, c.InitWFn, c.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}

	log.WithFields(logrus.Fields{
		"variant":       encoder.Variant(),
		"observation":   encoder.ObservationShape(),
		"embeddingSize": encoder.EmbeddingSize(),
		"params":        encoder.NumParams(),
		"device":        c.Device,
		"action":        shape,
	}).Info("constructed random encoder")

	return &RE3{
		encoder:     encoder,
		actionShape: shape,
		config:      c,
	}, nil
}

// actionShape returns the shape recorded for an action space: the
// number of actions for a discrete space and the shape of an action
// for a continuous space
func actionShape(action env.Spec) ([]int, error) {
	switch action.Cardinality {
	case env.Discrete:
		n, err := action.NumActions()
		if err != nil {
			return nil, errors.Wrap(ErrUnsupportedActionSpace, err.Error())
		}
		return []int{n}, nil

	case env.Continuous:
		shape := make([]int, len(action.Shape))
		copy(shape, action.Shape)
		return shape, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedActionSpace, "new: "+
			"cardinality %q", action.Cardinality)
	}
}

// Config returns the configuration of the RE3 with defaults filled in
func (r *RE3) Config() Config {
	return r.config
}

// Encoder returns the random encoder of the RE3
func (r *RE3) Encoder() network.Encoder {
	return r.encoder
}

// ActionShape returns the number of actions for discrete action spaces
// and the shape of an action for continuous action spaces
func (r *RE3) ActionShape() []int {
	shape := make([]int, len(r.actionShape))
	copy(shape, r.actionShape)
	return shape
}

// IntrinsicRewards is like ComputeIntrinsicRewards using the number of
// neighbours set in the RE3's Config
func (r *RE3) IntrinsicRewards(obs *tensor.Dense,
	timeSteps int) (*mat.Dense, error) {
	return r.ComputeIntrinsicRewards(obs, timeSteps, r.config.K)
}

// ComputeIntrinsicRewards returns the (T, N) matrix of intrinsic
// rewards for a batch of observations shaped (T, N) + observation
// shape, collected over T time steps from N environment instances.
// The timeSteps argument is the number of environment steps taken so
// far and determines the reward coefficient.
//
// The reward of time step t in instance n is log(d + 1) scaled by the
// coefficient, where d is the distance from the embedding of that
// observation to its k-th nearest neighbour among the T embeddings of
// instance n. When T < k + 1 the farthest embedding is used instead.
// The observation batch is not modified.
func (r *RE3) ComputeIntrinsicRewards(obs *tensor.Dense, timeSteps,
	k int) (*mat.Dense, error) {
	if timeSteps < 0 {
		return nil, errors.Wrapf(ErrNegativeTimeSteps,
			"computeIntrinsicRewards: %d", timeSteps)
	}
	if k < 1 {
		return nil, errors.Wrapf(entropy.ErrInvalidK,
			"computeIntrinsicRewards: %d", k)
	}

	obsShape := r.encoder.ObservationShape()
	shape := obs.Shape()
	if len(shape) != len(obsShape)+2 {
		return nil, errors.Wrapf(network.ErrShapeMismatch,
			"computeIntrinsicRewards: batch shape %v, expected (T, N) + %v",
			shape, obsShape)
	}
	for i, dim := range obsShape {
		if shape[i+2] != dim {
			return nil, errors.Wrapf(network.ErrShapeMismatch,
				"computeIntrinsicRewards: batch shape %v, expected (T, N) "+
					"+ %v", shape, obsShape)
		}
	}
	steps, instances := shape[0], shape[1]
	if steps < 1 || instances < 1 {
		return nil, errors.Wrapf(network.ErrShapeMismatch,
			"computeIntrinsicRewards: empty batch %v", shape)
	}

	embeddings, err := r.embed(obs, steps*instances)
	if err != nil {
		return nil, errors.Wrap(err, "computeIntrinsicRewards")
	}

	if entropy.Clamped(steps, k) {
		log.WithFields(logrus.Fields{
			"T":    steps,
			"k":    k,
			"rank": entropy.Rank(steps, k),
		}).Debug("window shorter than k + 1, using farthest neighbour")
	}

	rewards := mat.NewDense(steps, instances, nil)

	g := new(errgroup.Group)
	g.SetLimit(r.config.Workers)
	for n := 0; n < instances; n++ {
		n := n
		g.Go(func() error {
			window := gather(embeddings, steps, instances, n)
			est, err := entropy.Estimate(window, k)
			if err != nil {
				return errors.Wrapf(err, "computeIntrinsicRewards: "+
					"instance %d", n)
			}

			// Each instance owns a distinct column
			for t, h := range est {
				rewards.Set(t, n, h)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Scale(rewards, Coefficient(r.config.Beta, r.config.Kappa, timeSteps))
	return rewards, nil
}

// embed embeds all observations of a (T, N) + observation shape batch
// in a single pass. Row t*N + n of the result is the embedding of
// time step t in instance n.
func (r *RE3) embed(obs *tensor.Dense, batch int) (*mat.Dense, error) {
	data, err := network.Float64Data(obs)
	if err != nil {
		return nil, err
	}

	flat := tensor.New(
		tensor.WithShape(append([]int{batch},
			r.encoder.ObservationShape()...)...),
		tensor.WithBacking(data),
	)
	return r.encoder.Embed(flat)
}

// gather returns the (T, D) embeddings of instance n from the
// (T*N, D) embeddings of a batch
func gather(embeddings *mat.Dense, steps, instances, n int) *mat.Dense {
	_, features := embeddings.Dims()
	window := mat.NewDense(steps, features, nil)
	for t := 0; t < steps; t++ {
		window.SetRow(t, embeddings.RawRowView(t*instances+n))
	}
	return window
}
