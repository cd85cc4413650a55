// Package initwfn implements seeded weight initialization algorithms
// for frozen networks. Initializers can be JSON serialized into
// configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	FanInU   Type = "FanInU"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
)

// ErrInvalidConfig is returned when an initializer is configured with
// values that do not describe a distribution.
var ErrInvalidConfig = errors.New("invalid weight initializer config")

// InitWFn wraps a weight initialization Config so that it can be JSON
// marshalled and unmarshalled.
type InitWFn struct {
	Type
	Config
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) (*InitWFn, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &InitWFn{Type: c.Type(), Config: c}, nil
}

// Init returns a new Float64 tensor of the given shape with values
// drawn from the initializer's distribution. The fanIn and fanOut
// arguments are the number of input and output units of the layer the
// tensor belongs to.
func (i *InitWFn) Init(src rand.Source, fanIn, fanOut int,
	shape ...int) *tensor.Dense {
	r := i.Rander(fanIn, fanOut, src)

	backing := make([]float64, tensor.Shape(shape).TotalSize())
	for j := range backing {
		backing[j] = r.Rand()
	}

	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing))
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", i.Type, i.Config)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(GlorotU):  reflect.TypeOf(GlorotUConfig{}),
			string(GlorotN):  reflect.TypeOf(GlorotNConfig{}),
			string(HeU):      reflect.TypeOf(HeUConfig{}),
			string(HeN):      reflect.TypeOf(HeNConfig{}),
			string(FanInU):   reflect.TypeOf(FanInUConfig{}),
			string(Uniform):  reflect.TypeOf(UniformConfig{}),
			string(Gaussian): reflect.TypeOf(GaussianConfig{}),
			string(Zeroes):   reflect.TypeOf(ZeroesConfig{}),
			string(Ones):     reflect.TypeOf(OnesConfig{}),
			string(Constant): reflect.TypeOf(ConstantConfig{}),
		})
	if err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		return err
	}

	i.Type = typeName
	i.Config = config

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", errors.Errorf("unmarshalConfig: missing %q field",
			typeJsonField)
	}

	ty, found := customTypes[typeName]
	if !found {
		return nil, "", errors.Errorf("unmarshalConfig: unknown initializer "+
			"type %q", typeName)
	}
	value := reflect.New(ty).Interface()

	// Configs without parameters may omit the value field entirely
	if raw, ok := m[valueJsonField]; ok && raw != nil {
		valueBytes, err := json.Marshal(raw)
		if err != nil {
			return nil, "", err
		}

		if err = json.Unmarshal(valueBytes, value); err != nil {
			return nil, "", err
		}
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// Config implements a weight initializer configuration and can be used
// to create the described distribution over weights.
type Config interface {
	// Rander returns the distribution that weights of a layer with
	// fanIn inputs and fanOut outputs are drawn from, using src as
	// the source of randomness.
	Rander(fanIn, fanOut int, src rand.Source) distuv.Rander

	// Type returns the type of initializer that is described
	Type() Type

	// Validate returns an error if the configuration is illegal
	Validate() error
}
