package cartpole

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

var (
	background = color.White
	cartColour = color.Black
	poleColour = color.RGBA{R: 204, G: 153, B: 102, A: 255}
	axleColour = color.RGBA{R: 128, G: 128, B: 204, A: 255}
)

// Render draws the current state of the environment into a new
// width x height image
func (c *base) Render(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	worldWidth := c.positionBounds.Max - c.positionBounds.Min
	scale := float64(width) / worldWidth

	cartY := 0.75 * float64(height)
	cartWidth := 0.5 * scale
	cartHeight := 0.3 * scale
	poleLength := 2 * HalfPoleLength * scale
	poleWidth := math.Max(1, 0.1*scale)

	state := c.lastStep.Observation
	cartX := (state.AtVec(0) - c.positionBounds.Min) * scale
	angle := state.AtVec(2)

	// Track
	dc.SetColor(cartColour)
	dc.SetLineWidth(1)
	dc.DrawLine(0, cartY, float64(width), cartY)
	dc.Stroke()

	// Cart
	dc.DrawRectangle(cartX-cartWidth/2, cartY-cartHeight/2, cartWidth,
		cartHeight)
	dc.Fill()

	// Pole, where an angle of 0 points straight up
	dc.SetColor(poleColour)
	dc.SetLineWidth(poleWidth)
	dc.DrawLine(cartX, cartY, cartX+poleLength*math.Sin(angle),
		cartY-poleLength*math.Cos(angle))
	dc.Stroke()

	dc.SetColor(axleColour)
	dc.DrawCircle(cartX, cartY, poleWidth/2)
	dc.Fill()

	return dc.Image()
}
