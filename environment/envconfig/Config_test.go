package envconfig

import (
	"encoding/json"
	"testing"

	env "github.com/samuelfneumann/re3/environment"
)

func TestCreateCartpole(t *testing.T) {
	for _, continuous := range []bool{false, true} {
		c := NewConfig(Cartpole, Balance, continuous, 100, 0.99, false)
		e, step, err := c.Create(1)
		if err != nil {
			t.Fatal(err)
		}
		if !step.First() {
			t.Errorf("continuous(%v): first step has type %v", continuous,
				step.StepType)
		}

		want := env.Discrete
		if continuous {
			want = env.Continuous
		}
		if have := e.ActionSpec().Cardinality; have != want {
			t.Errorf("action cardinality want(%v) have(%v)", want, have)
		}
		if rank := e.ObservationSpec().Rank(); rank != 1 {
			t.Errorf("observation rank want(1) have(%v)", rank)
		}
	}
}

func TestCreatePuck(t *testing.T) {
	for _, continuous := range []bool{false, true} {
		c := NewConfig(Puck, Reach, continuous, 100, 0.99, false)
		e, step, err := c.Create(2)
		if err != nil {
			t.Fatal(err)
		}
		if !step.First() {
			t.Errorf("continuous(%v): first step has type %v", continuous,
				step.StepType)
		}
		if shape := e.ObservationSpec().Shape; len(shape) != 1 ||
			shape[0] != 4 {
			t.Errorf("observation shape want([4]) have(%v)", shape)
		}

		// Starts near the centre of the arena
		for i := 0; i < 2; i++ {
			if x := step.Observation.AtVec(i); x < 4 || x > 6 {
				t.Errorf("start feature %v = %v not near the centre", i, x)
			}
		}
	}

	c := NewConfig(Puck, Reach, false, 100, 0.99, true)
	c.Height, c.Width = 32, 32
	e, step, err := c.Create(2)
	if err != nil {
		t.Fatal(err)
	}
	if shape := e.ObservationSpec().Shape; len(shape) != 3 || shape[1] != 32 {
		t.Errorf("pixel observation shape want([1 32 32]) have(%v)", shape)
	}
	if step.Observation.Len() != 32*32 {
		t.Errorf("frame size want(%v) have(%v)", 32*32,
			step.Observation.Len())
	}
}

func TestCreatePixels(t *testing.T) {
	c := NewConfig(Cartpole, Balance, false, 100, 0.99, true)
	c.Height, c.Width = 40, 60

	e, step, err := c.Create(1)
	if err != nil {
		t.Fatal(err)
	}

	shape := e.ObservationSpec().Shape
	if len(shape) != 3 || shape[0] != 1 || shape[1] != 40 || shape[2] != 60 {
		t.Errorf("observation shape want([1 40 60]) have(%v)", shape)
	}
	if step.Observation.Len() != 40*60 {
		t.Errorf("observation size want(%v) have(%v)", 40*60,
			step.Observation.Len())
	}
}

func TestCreateErrors(t *testing.T) {
	for _, c := range []Config{
		NewConfig("Pendulum", Balance, false, 10, 1, false),
		NewConfig(Cartpole, "SwingUp", false, 10, 1, false),
		NewConfig(Puck, Balance, false, 10, 1, false),
	} {
		if _, _, err := c.Create(1); err == nil {
			t.Errorf("%v: expected an error", c)
		}
	}
}

func TestJSON(t *testing.T) {
	data := []byte(`{"Environment": "Cartpole", "Task": "Balance",
		"EpisodeCutoff": 50, "Discount": 1, "Pixels": true}`)

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatal(err)
	}

	e, _, err := c.Create(3)
	if err != nil {
		t.Fatal(err)
	}
	shape := e.ObservationSpec().Shape
	if len(shape) != 3 || shape[1] != DefaultHeight || shape[2] != DefaultWidth {
		t.Errorf("observation shape want([1 %v %v]) have(%v)", DefaultHeight,
			DefaultWidth, shape)
	}
}
