package initwfn

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// HeUConfig implements a configuration of the He uniform
// initialization algorithm.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	config := HeUConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Rander returns the uniform distribution over ±gain * sqrt(3 / fanIn)
func (h HeUConfig) Rander(fanIn, _ int, src rand.Source) distuv.Rander {
	bound := h.Gain * math.Sqrt(3/float64(fanIn))
	return distuv.Uniform{Min: -bound, Max: bound, Src: src}
}

// Validate returns an error if the configuration is illegal
func (h HeUConfig) Validate() error {
	if h.Gain <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "heU: gain %v <= 0", h.Gain)
	}
	return nil
}

// HeNConfig implements a configuration of the He normal
// initialization algorithm.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He Normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	config := HeNConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Rander returns the normal distribution with mean 0 and standard
// deviation gain / sqrt(fanIn)
func (h HeNConfig) Rander(fanIn, _ int, src rand.Source) distuv.Rander {
	return distuv.Normal{Mu: 0, Sigma: h.Gain / math.Sqrt(float64(fanIn)),
		Src: src}
}

// Validate returns an error if the configuration is illegal
func (h HeNConfig) Validate() error {
	if h.Gain <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "heN: gain %v <= 0", h.Gain)
	}
	return nil
}
