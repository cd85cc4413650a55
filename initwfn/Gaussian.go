package initwfn

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianConfig implements a configuration of a weight initializer
// that draws weights from a gaussian distribution
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a new gaussian weight initializer
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	config := GaussianConfig{
		Mean:   mean,
		StdDev: stddev,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Rander returns the gaussian distribution described by the
// configuration
func (g GaussianConfig) Rander(_, _ int, src rand.Source) distuv.Rander {
	return distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: src}
}

// Validate returns an error if the configuration is illegal
func (g GaussianConfig) Validate() error {
	if g.StdDev < 0 {
		return errors.Wrapf(ErrInvalidConfig, "gaussian: stddev %v < 0",
			g.StdDev)
	}
	return nil
}
