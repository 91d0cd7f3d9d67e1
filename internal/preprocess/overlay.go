package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/cardmat/cardscan/internal/geometry"
)

// Overlay draws quad outlines on a copy of img for debug output. Each quad
// gets its own hue, evenly spaced around the color wheel at full saturation
// so the outlines stay visible on both light and dark frames.
func Overlay(img image.Image, quads []geometry.Quad) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for i, q := range quads {
		hue := float64(i) * 360 / float64(len(quads))
		c := colorful.Hsl(hue, 1, 0.5)
		lineColor := color.RGBA{
			R: uint8(c.R * 255),
			G: uint8(c.G * 255),
			B: uint8(c.B * 255),
			A: 255,
		}
		for e := 0; e < 4; e++ {
			drawLine(out, q[e], q[(e+1)%4], lineColor)
		}
	}
	return out
}

// drawLine rasterizes the segment a-b with Bresenham's algorithm, clipping
// to the image bounds.
func drawLine(img *image.RGBA, a, b geometry.Point, c color.RGBA) {
	x0, y0 := int(a.X+0.5), int(a.Y+0.5)
	x1, y1 := int(b.X+0.5), int(b.Y+0.5)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	bounds := img.Bounds()
	for {
		if image.Pt(x0, y0).In(bounds) {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
