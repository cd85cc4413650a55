package initwfn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// constant implements the distuv.Rander interface so that constant
// initialization can be accomplished through the same code path as
// random initialization
type constant float64

// Rand returns the constant value
func (c constant) Rand() float64 {
	return float64(c)
}

// ZeroesConfig implements a configuration of a zero weight initializer
type ZeroesConfig struct{}

// NewZeroes returns a new zeroes weight intializer
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type returns the type of the weight initializer created using this
// config
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Rander returns a distribution that always draws 0
func (z ZeroesConfig) Rander(_, _ int, _ rand.Source) distuv.Rander {
	return constant(0)
}

// Validate returns an error if the configuration is illegal
func (z ZeroesConfig) Validate() error {
	return nil
}

// OnesConfig implements a configuration of a weight initializer that
// initializes all weights to 1.
type OnesConfig struct{}

// NewOnes returns a new ones weight intializer
func NewOnes() (*InitWFn, error) {
	return newInitWFn(OnesConfig{})
}

// Type returns the type of the weight initializer created using this
// config
func (o OnesConfig) Type() Type {
	return Ones
}

// Rander returns a distribution that always draws 1
func (o OnesConfig) Rander(_, _ int, _ rand.Source) distuv.Rander {
	return constant(1)
}

// Validate returns an error if the configuration is illegal
func (o OnesConfig) Validate() error {
	return nil
}

// ConstantConfig implements a configuration of a weight initializer
// that initializes all weights to a constant value.
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight intializer
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{value})
}

// Type returns the type of the weight initializer created using this
// config
func (c ConstantConfig) Type() Type {
	return Constant
}

// Rander returns a distribution that always draws Value
func (c ConstantConfig) Rander(_, _ int, _ rand.Source) distuv.Rander {
	return constant(c.Value)
}

// Validate returns an error if the configuration is illegal
func (c ConstantConfig) Validate() error {
	return nil
}
