package re3

import (
	"encoding/json"
	"io"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/re3/entropy"
	env "github.com/samuelfneumann/re3/environment"
	"github.com/samuelfneumann/re3/initwfn"
	"github.com/samuelfneumann/re3/network"
)

func init() {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	SetLogger(quiet)
}

// spec returns an environment Spec of the given shape and cardinality
// with unit bounds
func spec(t env.SpecType, c env.Cardinality, shape ...int) env.Spec {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	low := mat.NewVecDense(size, nil)
	high := mat.NewVecDense(size, nil)
	for i := 0; i < size; i++ {
		high.SetVec(i, 1)
	}
	return env.NewSpec(shape, t, low, high, c)
}

func discreteActions() env.Spec {
	return env.NewSpec([]int{1}, env.Action, mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{2}), env.Discrete)
}

func newRE3(t *testing.T, c Config, obsShape ...int) *RE3 {
	r, err := New(spec(env.Observation, env.Continuous, obsShape...),
		discreteActions(), c)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// batch returns a deterministic Float64 observation batch
func batch(shape ...int) *tensor.Dense {
	data := make([]float64, tensor.Shape(shape).TotalSize())
	for i := range data {
		data[i] = math.Sin(0.7*float64(i)) + 0.1*float64(i%5)
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
}

func TestCoefficient(t *testing.T) {
	for _, test := range []struct {
		beta, kappa float64
		t           int
		want        float64
	}{
		{beta: 0.5, kappa: 0, t: 0, want: 0.5},
		{beta: 0.5, kappa: 0, t: 1000, want: 0.5},
		{beta: 1, kappa: 1, t: 0, want: 1},
		{beta: 1, kappa: 1, t: 3, want: 0},
		{beta: 2, kappa: 0.5, t: 2, want: 0.5},
		{beta: 0, kappa: 0.1, t: 7, want: 0},
	} {
		have := Coefficient(test.beta, test.kappa, test.t)
		if !scalar.EqualWithinAbs(have, test.want, 1e-12) {
			t.Errorf("Coefficient(%v, %v, %v): want(%v) have(%v)", test.beta,
				test.kappa, test.t, test.want, have)
		}
	}
}

func TestRewardShape(t *testing.T) {
	r := newRE3(t, NewConfig(8, 0.05, 1e-5), 4)

	rewards, err := r.ComputeIntrinsicRewards(batch(5, 3, 4), 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if rows, cols := rewards.Dims(); rows != 5 || cols != 3 {
		t.Errorf("dims want(5, 3) have(%v, %v)", rows, cols)
	}
}

func TestRewardsNonNegative(t *testing.T) {
	r := newRE3(t, NewConfig(16, 1, 0), 6)

	for k := 1; k <= 6; k++ {
		rewards, err := r.ComputeIntrinsicRewards(batch(6, 2, 6), 0, k)
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range rewards.RawMatrix().Data {
			if v < 0 || math.IsNaN(v) {
				t.Fatalf("k = %v: negative reward %v", k, v)
			}
		}
	}
}

func TestRewardsDecay(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0.01), 4)
	obs := batch(6, 2, 4)

	prev, err := r.ComputeIntrinsicRewards(obs, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, steps := range []int{1, 10, 100, 1000} {
		next, err := r.ComputeIntrinsicRewards(obs, steps, 3)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range next.RawMatrix().Data {
			if v > prev.RawMatrix().Data[i] {
				t.Fatalf("time step %v: reward %v increased from %v", steps,
					v, prev.RawMatrix().Data[i])
			}
		}
		prev = next
	}
}

func TestRewardsDeterministic(t *testing.T) {
	c := NewConfig(8, 0.05, 1e-5)
	c.Seed = 11
	obs := batch(7, 3, 5)

	want, err := newRE3(t, c, 5).ComputeIntrinsicRewards(obs, 100, 3)
	if err != nil {
		t.Fatal(err)
	}
	have, err := newRE3(t, c, 5).ComputeIntrinsicRewards(obs, 100, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(want, have) {
		t.Errorf("rewards differ:\n%v\n%v", mat.Formatted(want),
			mat.Formatted(have))
	}
}

func TestRewardsConstantCoefficient(t *testing.T) {
	r := newRE3(t, NewConfig(8, 0.5, 0), 4)
	raw := newRE3(t, NewConfig(8, 1, 0), 4)
	obs := batch(5, 2, 4)

	want, err := raw.ComputeIntrinsicRewards(obs, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	want.Scale(0.5, want)

	for _, steps := range []int{0, 1, 50000} {
		have, err := r.ComputeIntrinsicRewards(obs, steps, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !mat.EqualApprox(want, have, 1e-12) {
			t.Errorf("time step %v: want\n%v\nhave\n%v", steps,
				mat.Formatted(want), mat.Formatted(have))
		}
	}
}

func TestRewardsZeroCoefficient(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 1), 4)
	obs := batch(5, 2, 4)

	rewards, err := r.ComputeIntrinsicRewards(obs, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range rewards.RawMatrix().Data {
		if v != 0 {
			t.Fatalf("want all zero rewards, have %v", v)
		}
	}

	rewards, err = r.ComputeIntrinsicRewards(obs, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if floats.Max(rewards.RawMatrix().Data) <= 0 {
		t.Error("want positive rewards at time step 0")
	}
}

func TestRewardsFarthestNeighbour(t *testing.T) {
	r := newRE3(t, NewConfig(6, 1, 0), 3)
	obs := batch(4, 1, 3)

	rewards, err := r.ComputeIntrinsicRewards(obs, 0, 3)
	if err != nil {
		t.Fatal(err)
	}

	emb, err := r.Encoder().Embed(batch(4, 3))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		farthest := 0.0
		for j := 0; j < 4; j++ {
			d := floats.Distance(emb.RawRowView(i), emb.RawRowView(j), 2)
			farthest = math.Max(farthest, d)
		}
		if want := math.Log1p(farthest); !scalar.EqualWithinAbs(
			rewards.At(i, 0), want, 1e-12) {
			t.Errorf("time step %v: want(%v) have(%v)", i, want,
				rewards.At(i, 0))
		}
	}
}

func TestRewardsMaxK(t *testing.T) {
	r := newRE3(t, NewConfig(6, 1, 0), 3)

	rewards, err := r.ComputeIntrinsicRewards(batch(4, 2, 3), 0, math.MaxInt)
	if err != nil {
		t.Fatal(err)
	}

	// Row t*N + n of the flattened batch is instance n at time step t
	emb, err := r.Encoder().Embed(batch(8, 3))
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 2; n++ {
		for i := 0; i < 4; i++ {
			farthest := 0.0
			for j := 0; j < 4; j++ {
				d := floats.Distance(emb.RawRowView(i*2+n),
					emb.RawRowView(j*2+n), 2)
				farthest = math.Max(farthest, d)
			}
			if want := math.Log1p(farthest); !scalar.EqualWithinAbs(
				rewards.At(i, n), want, 1e-12) {
				t.Errorf("instance %v time step %v: want(%v) have(%v)", n, i,
					want, rewards.At(i, n))
			}
		}
	}
}

func TestRewardsClampedWindow(t *testing.T) {
	r := newRE3(t, NewConfig(4, 1, 0), 2)

	rewards, err := r.ComputeIntrinsicRewards(batch(2, 3, 2), 0, 3)
	if err != nil {
		t.Fatal(err)
	}

	// With two points the farthest neighbour of each is the other
	for n := 0; n < 3; n++ {
		if rewards.At(0, n) != rewards.At(1, n) {
			t.Errorf("instance %v: want equal rewards have %v and %v", n,
				rewards.At(0, n), rewards.At(1, n))
		}
	}

	single, err := r.ComputeIntrinsicRewards(batch(1, 2, 2), 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range single.RawMatrix().Data {
		if v != 0 {
			t.Errorf("single step: want 0 have %v", v)
		}
	}
}

func TestRewardsInstancesIndependent(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0), 3)

	obs := batch(5, 2, 3)
	want, err := r.ComputeIntrinsicRewards(obs, 0, 2)
	if err != nil {
		t.Fatal(err)
	}

	// Perturb instance 1 only
	other := obs.Clone().(*tensor.Dense)
	data := other.Data().([]float64)
	for step := 0; step < 5; step++ {
		for f := 0; f < 3; f++ {
			data[(step*2+1)*3+f] += 10
		}
	}
	have, err := r.ComputeIntrinsicRewards(other, 0, 2)
	if err != nil {
		t.Fatal(err)
	}

	for step := 0; step < 5; step++ {
		if want.At(step, 0) != have.At(step, 0) {
			t.Errorf("instance 0, time step %v: want(%v) have(%v)", step,
				want.At(step, 0), have.At(step, 0))
		}
	}
}

func TestRewardsDoNotModifyBatch(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0), 3)
	obs := batch(4, 2, 3)
	before := append([]float64(nil), obs.Data().([]float64)...)

	if _, err := r.ComputeIntrinsicRewards(obs, 0, 3); err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(before, obs.Data().([]float64)) {
		t.Error("observation batch was modified")
	}
}

func TestRewardsFloat32(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0), 2)

	data64 := []float64{0.5, -1, 2, 0.25, 1, 1, -0.5, 0, 3, 2, 1, -2}
	data32 := make([]float32, len(data64))
	for i, v := range data64 {
		data32[i] = float32(v)
	}

	want, err := r.ComputeIntrinsicRewards(tensor.New(
		tensor.WithShape(3, 2, 2), tensor.WithBacking(data64)), 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	have, err := r.ComputeIntrinsicRewards(tensor.New(
		tensor.WithShape(3, 2, 2), tensor.WithBacking(data32)), 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(want, have) {
		t.Errorf("want\n%v\nhave\n%v", mat.Formatted(want),
			mat.Formatted(have))
	}
}

func TestRewardsCNN(t *testing.T) {
	c := NewConfig(8, 1, 0)
	c.EncodeBatchSize = 4
	r := newRE3(t, c, 1, 36, 36)
	if r.Encoder().Variant() != network.CNN {
		t.Fatalf("variant want(%v) have(%v)", network.CNN,
			r.Encoder().Variant())
	}

	rewards, err := r.IntrinsicRewards(batch(3, 2, 1, 36, 36), 0)
	if err != nil {
		t.Fatal(err)
	}
	if rows, cols := rewards.Dims(); rows != 3 || cols != 2 {
		t.Errorf("dims want(3, 2) have(%v, %v)", rows, cols)
	}
}

func TestNewErrors(t *testing.T) {
	obs := spec(env.Observation, env.Continuous, 4)
	c := NewConfig(8, 0.05, 1e-5)

	unsupported := spec(env.Action, env.Unsupported, 1)
	if _, err := New(obs, unsupported, c); !errors.Is(err,
		ErrUnsupportedActionSpace) {
		t.Errorf("expected ErrUnsupportedActionSpace, have %v", err)
	}

	image := spec(env.Observation, env.Continuous, 4, 4)
	if _, err := New(image, discreteActions(), c); !errors.Is(err,
		network.ErrUnsupportedObservationRank) {
		t.Errorf("expected ErrUnsupportedObservationRank, have %v", err)
	}

	for _, device := range []Device{"cuda", "GPU", "tpu"} {
		c := c
		c.Device = device
		if _, err := New(obs, discreteActions(), c); !errors.Is(err,
			ErrUnsupportedDevice) {
			t.Errorf("device %v: expected ErrUnsupportedDevice, have %v",
				device, err)
		}
	}

	for _, invalid := range []Config{
		{EmbeddingSize: 0, Beta: 1},
		{EmbeddingSize: 8, Beta: -1},
		{EmbeddingSize: 8, Beta: 1, Kappa: 1.5},
		{EmbeddingSize: 8, Beta: 1, Kappa: -0.1},
		{EmbeddingSize: 8, Beta: 1, K: -1},
		{EmbeddingSize: 8, Beta: 1, Workers: -2},
		{EmbeddingSize: 8, Beta: 1, EncodeBatchSize: -1},
	} {
		if _, err := New(obs, discreteActions(), invalid); !errors.Is(err,
			ErrInvalidConfig) {
			t.Errorf("%v: expected ErrInvalidConfig, have %v", invalid, err)
		}
	}
}

func TestActionShape(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0), 4)
	if shape := r.ActionShape(); len(shape) != 1 || shape[0] != 3 {
		t.Errorf("discrete action shape want([3]) have(%v)", shape)
	}

	continuous, err := New(spec(env.Observation, env.Continuous, 4),
		spec(env.Action, env.Continuous, 2), NewConfig(8, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if shape := continuous.ActionShape(); len(shape) != 1 || shape[0] != 2 {
		t.Errorf("continuous action shape want([2]) have(%v)", shape)
	}
}

func TestComputeErrors(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0), 4)

	if _, err := r.ComputeIntrinsicRewards(batch(4, 2, 4), -1,
		3); !errors.Is(err, ErrNegativeTimeSteps) {
		t.Errorf("expected ErrNegativeTimeSteps, have %v", err)
	}
	if _, err := r.ComputeIntrinsicRewards(batch(4, 2, 4), 0,
		0); !errors.Is(err, entropy.ErrInvalidK) {
		t.Errorf("expected ErrInvalidK, have %v", err)
	}

	for _, shape := range [][]int{{4, 4}, {4, 2, 3}, {4, 2, 4, 1}} {
		if _, err := r.ComputeIntrinsicRewards(batch(shape...), 0,
			3); !errors.Is(err, network.ErrShapeMismatch) {
			t.Errorf("shape %v: expected ErrShapeMismatch, have %v", shape,
				err)
		}
	}

	ints := tensor.New(tensor.WithShape(2, 1, 4),
		tensor.WithBacking([]int{1, 2, 3, 4, 5, 6, 7, 8}))
	if _, err := r.ComputeIntrinsicRewards(ints, 0, 3); !errors.Is(err,
		network.ErrUnsupportedDtype) {
		t.Errorf("expected ErrUnsupportedDtype, have %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	r := newRE3(t, NewConfig(8, 1, 0), 4)
	c := r.Config()

	if c.K != entropy.DefaultK {
		t.Errorf("k want(%v) have(%v)", entropy.DefaultK, c.K)
	}
	if c.Device != CPU {
		t.Errorf("device want(%v) have(%v)", CPU, c.Device)
	}
	if c.Workers < 1 {
		t.Errorf("workers want > 0 have %v", c.Workers)
	}
	if c.InitWFn == nil || c.InitWFn.Type != initwfn.FanInU {
		t.Errorf("initializer want(%v) have(%v)", initwfn.FanInU, c.InitWFn)
	}
}

func TestConfigJSON(t *testing.T) {
	data := []byte(`{
		"EmbeddingSize": 16,
		"Beta": 0.05,
		"Kappa": 0.00001,
		"K": 5,
		"Device": "CPU",
		"Seed": 3,
		"Workers": 2,
		"EncodeBatchSize": 64,
		"InitWFn": {"Type": "GlorotU", "Config": {"Gain": 1}}
	}`)

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.EmbeddingSize != 16 || c.K != 5 || c.Seed != 3 ||
		c.EncodeBatchSize != 64 || c.InitWFn.Type != initwfn.GlorotU {
		t.Errorf("unexpected config %v", c)
	}

	r := newRE3(t, c, 4)
	if r.Config().Device != CPU {
		t.Errorf("device want(%v) have(%v)", CPU, r.Config().Device)
	}
}

func BenchmarkComputeIntrinsicRewards(b *testing.B) {
	r, err := New(spec(env.Observation, env.Continuous, 4),
		discreteActions(), NewConfig(128, 0.05, 1e-5))
	if err != nil {
		b.Fatal(err)
	}
	obs := batch(128, 8, 4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.IntrinsicRewards(obs, i); err != nil {
			b.Fatal(err)
		}
	}
}
