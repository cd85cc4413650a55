package initwfn

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// FanInUConfig implements a configuration of a uniform initializer
// over ±gain / sqrt(fanIn). With a gain of 1 this is the default
// initialization of linear and convolutional layers in most deep
// learning frameworks, and is the default for random encoders.
type FanInUConfig struct {
	Gain float64
}

// NewFanInU returns a new fan-in scaled uniform weight initializer
func NewFanInU(gain float64) (*InitWFn, error) {
	config := FanInUConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (f FanInUConfig) Type() Type {
	return FanInU
}

// Rander returns the uniform distribution over ±gain / sqrt(fanIn)
func (f FanInUConfig) Rander(fanIn, _ int, src rand.Source) distuv.Rander {
	bound := f.Gain / math.Sqrt(float64(fanIn))
	return distuv.Uniform{Min: -bound, Max: bound, Src: src}
}

// Validate returns an error if the configuration is illegal
func (f FanInUConfig) Validate() error {
	if f.Gain <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "fanInU: gain %v <= 0", f.Gain)
	}
	return nil
}
