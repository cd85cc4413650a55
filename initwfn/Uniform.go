package initwfn

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformConfig implements a configuration of a weight initializer that
// draws weights from a uniform distribution
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64) (*InitWFn, error) {
	config := UniformConfig{
		Low:  low,
		High: high,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (u UniformConfig) Type() Type {
	return Uniform
}

// Rander returns the uniform distribution over [Low, High)
func (u UniformConfig) Rander(_, _ int, src rand.Source) distuv.Rander {
	return distuv.Uniform{Min: u.Low, Max: u.High, Src: src}
}

// Validate returns an error if the configuration is illegal
func (u UniformConfig) Validate() error {
	if u.Low > u.High {
		return errors.Wrapf(ErrInvalidConfig, "uniform: low %v > high %v",
			u.Low, u.High)
	}
	return nil
}
