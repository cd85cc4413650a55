// Package wrappers implements wrappers that change the observations
// of an environment
package wrappers

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/re3/environment"
	ts "github.com/samuelfneumann/re3/timestep"
)

// Renderer is an environment that can draw its current state
type Renderer interface {
	env.Environment
	Render(width, height int) image.Image
}

// Pixels wraps a Renderer so that observations are grayscale frames
// of the rendered environment rather than the environment's own state
// features. Observations have shape (1, height, width), flattened in
// row-major order, with pixel intensities in [0, 1].
//
// Pixels implements the environment.Environment interface
type Pixels struct {
	Renderer
	height, width int
	lastStep      ts.TimeStep
}

// NewPixels returns a new Pixels wrapper around r producing frames of
// size height x width
func NewPixels(r Renderer, height, width int) (*Pixels, ts.TimeStep,
	error) {
	if height < 1 || width < 1 {
		return nil, ts.TimeStep{}, fmt.Errorf("newPixels: illegal frame "+
			"size %vx%v", height, width)
	}

	p := &Pixels{Renderer: r, height: height, width: width}
	step := p.wrap(r.CurrentTimeStep())

	return p, step, nil
}

// Reset resets the wrapped environment and returns the first frame
func (p *Pixels) Reset() (ts.TimeStep, error) {
	step, err := p.Renderer.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}
	return p.wrap(step), nil
}

// Step steps the wrapped environment and returns the next frame
func (p *Pixels) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	step, last, err := p.Renderer.Step(a)
	if err != nil {
		return ts.TimeStep{}, false, err
	}
	return p.wrap(step), last, nil
}

// CurrentTimeStep returns the last TimeStep that occurred in the
// environment
func (p *Pixels) CurrentTimeStep() ts.TimeStep {
	return p.lastStep
}

// ObservationSpec returns the observation specification of the
// environment
func (p *Pixels) ObservationSpec() env.Spec {
	size := p.height * p.width
	lowerBound := mat.NewVecDense(size, nil)
	upper := make([]float64, size)
	for i := range upper {
		upper[i] = 1.0
	}
	upperBound := mat.NewVecDense(size, upper)

	return env.NewSpec([]int{1, p.height, p.width}, env.Observation,
		lowerBound, upperBound, env.Continuous)
}

// wrap replaces the observation of a TimeStep with the current frame
func (p *Pixels) wrap(step ts.TimeStep) ts.TimeStep {
	step.Observation = mat.NewVecDense(p.height*p.width,
		Grayscale(p.Render(p.width, p.height)))
	p.lastStep = step
	return step
}

// Grayscale returns the row-major luminance of an image, scaled to
// [0, 1]
func Grayscale(img image.Image) []float64 {
	bounds := img.Bounds()
	pixels := make([]float64, 0, bounds.Dx()*bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			pixels = append(pixels, float64(gray.Y)/255)
		}
	}
	return pixels
}
