package puck

import (
	"image"
	"image/color"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"
)

var (
	floorColour = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	wallColour  = color.RGBA{R: 255, G: 166, B: 0, A: 255}
	puckColour  = color.RGBA{R: 128, G: 102, B: 230, A: 255}
)

// Render draws the arena from above into a new width x height image
func (p *base) Render(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(floorColour)
	dc.Clear()

	sx := float64(width) / ArenaSize
	sy := float64(height) / ArenaSize

	// The y axis of the image points down
	toPixels := func(v box2d.B2Vec2) (float64, float64) {
		return v.X * sx, float64(height) - v.Y*sy
	}

	dc.SetColor(wallColour)
	dc.SetLineWidth(2)
	for _, wall := range p.walls {
		edge := wall.GetFixtureList().M_shape.(*box2d.B2EdgeShape)
		x1, y1 := toPixels(edge.M_vertex1)
		x2, y2 := toPixels(edge.M_vertex2)
		dc.DrawLine(x1, y1, x2, y2)
	}
	dc.Stroke()

	dc.SetColor(puckColour)
	for fix := p.puck.GetFixtureList(); fix != nil; fix = fix.M_next {
		shape := fix.M_shape.(*box2d.B2PolygonShape)

		dc.ClearPath()
		for i := 0; i < shape.M_count; i++ {
			vertex := box2d.B2TransformVec2Mul(p.puck.M_xf, shape.M_vertices[i])
			dc.LineTo(toPixels(vertex))
		}
		dc.ClosePath()
		dc.Fill()
	}

	return dc.Image()
}
