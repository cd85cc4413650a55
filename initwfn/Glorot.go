package initwfn

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	config := GlorotUConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Rander returns the uniform distribution over
// ±gain * sqrt(6 / (fanIn + fanOut)).
func (g GlorotUConfig) Rander(fanIn, fanOut int,
	src rand.Source) distuv.Rander {
	bound := g.Gain * math.Sqrt(6/float64(fanIn+fanOut))
	return distuv.Uniform{Min: -bound, Max: bound, Src: src}
}

// Validate returns an error if the configuration is illegal
func (g GlorotUConfig) Validate() error {
	if g.Gain <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "glorotU: gain %v <= 0", g.Gain)
	}
	return nil
}

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64) (*InitWFn, error) {
	config := GlorotNConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Rander returns the normal distribution with mean 0 and standard
// deviation gain * sqrt(2 / (fanIn + fanOut)).
func (g GlorotNConfig) Rander(fanIn, fanOut int,
	src rand.Source) distuv.Rander {
	stddev := g.Gain * math.Sqrt(2/float64(fanIn+fanOut))
	return distuv.Normal{Mu: 0, Sigma: stddev, Src: src}
}

// Validate returns an error if the configuration is illegal
func (g GlorotNConfig) Validate() error {
	if g.Gain <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "glorotN: gain %v <= 0", g.Gain)
	}
	return nil
}
