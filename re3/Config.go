package re3

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/samuelfneumann/re3/entropy"
	"github.com/samuelfneumann/re3/initwfn"
)

// Device describes where the embedding network is placed
type Device string

// Available devices
const (
	CPU Device = "cpu"
)

// Config represents a configuration of the RE3 intrinsic reward engine.
// Config is JSON serializable.
type Config struct {
	// Number of features of an embedding
	EmbeddingSize int

	// Reward coefficient is Beta * (1 - Kappa)^t at time step t
	Beta  float64
	Kappa float64

	// Number of neighbours used by IntrinsicRewards. Zero means
	// entropy.DefaultK.
	K int

	// Device the encoder is placed on. Empty means CPU.
	Device Device

	// Seed of the encoder parameters
	Seed uint64

	// Maximum number of environment instances estimated concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Maximum number of observations embedded in a single forward
	// pass. Zero embeds the whole batch at once.
	EncodeBatchSize int

	// Weight initializer of the encoder. Nil means FanInU with gain 1.
	InitWFn *initwfn.InitWFn
}

// NewConfig returns a new Config with default values for all fields
// other than the embedding size and reward coefficient.
func NewConfig(embeddingSize int, beta, kappa float64) Config {
	return Config{
		EmbeddingSize: embeddingSize,
		Beta:          beta,
		Kappa:         kappa,
	}
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if c.EmbeddingSize < 1 {
		return errors.Wrapf(ErrInvalidConfig, "validate: embedding size "+
			"%d < 1", c.EmbeddingSize)
	}
	if c.Beta < 0 {
		return errors.Wrapf(ErrInvalidConfig, "validate: beta %v < 0", c.Beta)
	}
	if c.Kappa < 0 || c.Kappa > 1 {
		return errors.Wrapf(ErrInvalidConfig, "validate: kappa %v not in "+
			"[0, 1]", c.Kappa)
	}
	if c.K < 0 {
		return errors.Wrapf(ErrInvalidConfig, "validate: k %d < 0", c.K)
	}
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "validate: workers %d < 0",
			c.Workers)
	}
	if c.EncodeBatchSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "validate: encode batch "+
			"size %d < 0", c.EncodeBatchSize)
	}
	if c.InitWFn != nil && c.InitWFn.Config != nil {
		if err := c.InitWFn.Validate(); err != nil {
			return err
		}
	}

	switch Device(strings.ToLower(string(c.Device))) {
	case "", CPU:
	case "cuda", "gpu":
		return errors.Wrapf(ErrUnsupportedDevice, "validate: %q",
			c.Device)
	default:
		return errors.Wrapf(ErrUnsupportedDevice, "validate: unknown "+
			"device %q", c.Device)
	}

	return nil
}

// withDefaults returns a copy of the Config with all zero valued
// optional fields replaced by their defaults
func (c Config) withDefaults() (Config, error) {
	if c.K == 0 {
		c.K = entropy.DefaultK
	}
	if c.Device == "" {
		c.Device = CPU
	}
	c.Device = Device(strings.ToLower(string(c.Device)))
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.InitWFn == nil || c.InitWFn.Config == nil {
		init, err := initwfn.NewFanInU(1.0)
		if err != nil {
			return Config{}, err
		}
		c.InitWFn = init
	}
	return c, nil
}

// String implements the fmt.Stringer interface
func (c Config) String() string {
	return fmt.Sprintf("{EmbeddingSize: %d Beta: %v Kappa: %v K: %d "+
		"Device: %v Seed: %d Workers: %d EncodeBatchSize: %d InitWFn: %v}",
		c.EmbeddingSize, c.Beta, c.Kappa, c.K, c.Device, c.Seed, c.Workers,
		c.EncodeBatchSize, c.InitWFn)
}
