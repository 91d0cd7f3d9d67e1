package rectify

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/cardmat/cardscan/internal/geometry"
)

// background fills destination pixels with no source pre-image.
var background = color.NRGBA{R: 0, G: 0, B: 0, A: 255}

// Rectify warps the quadrilateral region quad of src into a w x h canonical
// rectangle.
//
// The quad's corners are re-ordered with the y-then-x rule before solving,
// so callers may pass corners in any order as long as they describe a
// simple quadrilateral. The canonical size should match the physical aspect
// ratio of the object; this function does not enforce that.
//
// Returns geometry.ErrDegenerateGeometry (wrapped) when the quad collapses
// to a line or point and no homography exists.
func Rectify(src image.Image, quad geometry.Quad, w, h int) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canonical size %dx%d", w, h)
	}

	ordered := geometry.OrderQuad([4]geometry.Point(quad))
	canonical := geometry.RectQuad(0, 0, float64(w-1), float64(h-1))

	// Solving canonical -> source gives the inverse mapping directly: each
	// destination pixel is pulled from its source pre-image.
	toSrc, err := geometry.SolveHomography(canonical, ordered)
	if err != nil {
		return nil, fmt.Errorf("rectify: %w", err)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sp, err := toSrc.Apply(geometry.Point{X: float64(x), Y: float64(y)})
			if err != nil {
				out.SetNRGBA(x, y, background)
				continue
			}
			out.SetNRGBA(x, y, bilinearSample(src, sb, sp))
		}
	}
	return out, nil
}

// CropStretch crops quad's axis-aligned bounding box and resizes it to
// w x h. Perspective is not corrected; text near the card edges will be
// distorted in oblique views. Lanczos resampling matches the quality used
// elsewhere for scaled crops.
func CropStretch(src image.Image, quad geometry.Quad, w, h int) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canonical size %dx%d", w, h)
	}

	min, max := quad.BoundingBox()
	rect := image.Rect(int(min.X), int(min.Y), int(max.X+0.5), int(max.Y+0.5))
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("quad bounding box outside source: %w", geometry.ErrDegenerateGeometry)
	}

	cropped := imaging.Crop(src, rect)
	return imaging.Resize(cropped, w, h, imaging.Lanczos), nil
}

// bilinearSample interpolates src at the fractional position p, given in
// the same absolute coordinate space as src.Bounds(). Positions outside the
// bounds return the background color; the last row and column interpolate
// against themselves.
func bilinearSample(src image.Image, sb image.Rectangle, p geometry.Point) color.NRGBA {
	x0 := int(math.Floor(p.X))
	y0 := int(math.Floor(p.Y))
	if x0 < sb.Min.X || y0 < sb.Min.Y || x0 >= sb.Max.X || y0 >= sb.Max.Y {
		return background
	}

	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= sb.Max.X {
		x1 = sb.Max.X - 1
	}
	if y1 >= sb.Max.Y {
		y1 = sb.Max.Y - 1
	}

	fx := p.X - float64(x0)
	fy := p.Y - float64(y0)

	r00, g00, b00, a00 := src.At(x0, y0).RGBA()
	r10, g10, b10, a10 := src.At(x1, y0).RGBA()
	r01, g01, b01, a01 := src.At(x0, y1).RGBA()
	r11, g11, b11, a11 := src.At(x1, y1).RGBA()

	lerp2 := func(v00, v10, v01, v11 uint32) uint8 {
		top := float64(v00)*(1-fx) + float64(v10)*fx
		bot := float64(v01)*(1-fx) + float64(v11)*fx
		return uint8(uint32(top*(1-fy)+bot*fy) >> 8)
	}

	return color.NRGBA{
		R: lerp2(r00, r10, r01, r11),
		G: lerp2(g00, g10, g01, g11),
		B: lerp2(b00, b10, b01, b11),
		A: lerp2(a00, a10, a01, a11),
	}
}
