package rectify

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/cardmat/cardscan/internal/geometry"
)

// patternImage builds an image whose pixel values encode their coordinates,
// so warps can be checked pixel-for-pixel.
func patternImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	return img
}

func TestRectify_IdentityOnAxisAlignedRect(t *testing.T) {
	src := patternImage(120, 160)
	quad := geometry.RectQuad(0, 0, 119, 159)

	out, err := Rectify(src, quad, 120, 160)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}

	// An axis-aligned rectangle warped to a same-size canonical rectangle
	// is the identity transform; interpolation lands on pixel centers.
	for _, pt := range []image.Point{{0, 0}, {60, 80}, {119, 159}, {5, 150}} {
		got := out.NRGBAAt(pt.X, pt.Y)
		want := src.NRGBAAt(pt.X, pt.Y)
		if got != want {
			t.Errorf("pixel (%d,%d): got %v, want %v", pt.X, pt.Y, got, want)
		}
	}
}

func TestRectify_SubRegionScale(t *testing.T) {
	src := patternImage(200, 200)
	// Warp the 100x100 top-left region up to 200x200: corner pixels of the
	// output must come from the region's corners.
	quad := geometry.RectQuad(0, 0, 99, 99)

	out, err := Rectify(src, quad, 200, 200)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}

	if got, want := out.NRGBAAt(0, 0), src.NRGBAAt(0, 0); got != want {
		t.Errorf("top-left: got %v, want %v", got, want)
	}
	if got, want := out.NRGBAAt(199, 199), src.NRGBAAt(99, 99); got != want {
		t.Errorf("bottom-right: got %v, want %v", got, want)
	}
}

func TestRectify_UnorderedCornersTolerated(t *testing.T) {
	src := patternImage(100, 100)
	// Same rectangle with corners handed over in scrambled order.
	quad := geometry.Quad{{X: 99, Y: 99}, {X: 0, Y: 0}, {X: 99, Y: 0}, {X: 0, Y: 99}}

	out, err := Rectify(src, quad, 100, 100)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if got, want := out.NRGBAAt(0, 0), src.NRGBAAt(0, 0); got != want {
		t.Errorf("corner ordering not recovered: got %v, want %v", got, want)
	}
}

func TestRectify_OutOfBoundsIsBackground(t *testing.T) {
	src := patternImage(100, 100)
	// Quad poking past the left and top of the frame.
	quad := geometry.RectQuad(-50, -50, 49, 49)

	out, err := Rectify(src, quad, 100, 100)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}

	if got := out.NRGBAAt(0, 0); got != background {
		t.Errorf("out-of-bounds pixel: got %v, want background %v", got, background)
	}
	// The in-frame part still samples real data.
	if got := out.NRGBAAt(99, 99); got == background {
		t.Error("in-bounds pixel should not be background")
	}
}

func TestRectify_DegenerateQuad(t *testing.T) {
	src := patternImage(100, 100)
	line := geometry.Quad{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 99, Y: 0}, {X: 25, Y: 0}}

	_, err := Rectify(src, line, 100, 100)
	if !errors.Is(err, geometry.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestRectify_InvalidSize(t *testing.T) {
	src := patternImage(10, 10)
	if _, err := Rectify(src, geometry.RectQuad(0, 0, 9, 9), 0, 10); err == nil {
		t.Error("zero width should fail")
	}
}

func TestCropStretch(t *testing.T) {
	src := patternImage(200, 200)
	quad := geometry.RectQuad(50, 50, 150, 150)

	out, err := CropStretch(src, quad, 80, 112)
	if err != nil {
		t.Fatalf("CropStretch failed: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != 80 || b.Dy() != 112 {
		t.Errorf("size: got %dx%d, want 80x112", b.Dx(), b.Dy())
	}
}

func TestCropStretch_OutsideSource(t *testing.T) {
	src := patternImage(100, 100)
	quad := geometry.RectQuad(500, 500, 600, 600)

	if _, err := CropStretch(src, quad, 80, 112); err == nil {
		t.Error("fully out-of-frame quad should fail")
	}
}

func TestExtractBands(t *testing.T) {
	card := patternImage(100, 200)
	bands := []BandSpec{
		{Name: "title", Top: 0.0, Bottom: 0.25},
		{Name: "footer", Top: 0.9, Bottom: 1.0},
	}

	regions, err := ExtractBands(card, bands)
	if err != nil {
		t.Fatalf("ExtractBands failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	if regions[0].Name != "title" || regions[0].Image.Bounds().Dy() != 50 {
		t.Errorf("title band: got %q %dpx tall", regions[0].Name, regions[0].Image.Bounds().Dy())
	}
	if regions[1].Name != "footer" || regions[1].Image.Bounds().Dy() != 20 {
		t.Errorf("footer band: got %q %dpx tall", regions[1].Name, regions[1].Image.Bounds().Dy())
	}

	// The footer band's first row is the card's row at 90% height.
	want := card.NRGBAAt(0, 180)
	got := regions[1].Image.NRGBAAt(regions[1].Image.Bounds().Min.X, regions[1].Image.Bounds().Min.Y)
	if got != want {
		t.Errorf("footer content: got %v, want %v", got, want)
	}
}

func TestExtractBands_InvalidSpec(t *testing.T) {
	card := patternImage(50, 50)
	bad := [][]BandSpec{
		{{Name: "inverted", Top: 0.5, Bottom: 0.3}},
		{{Name: "negative", Top: -0.1, Bottom: 0.2}},
		{{Name: "overflow", Top: 0.5, Bottom: 1.2}},
	}
	for _, bands := range bad {
		if _, err := ExtractBands(card, bands); err == nil {
			t.Errorf("band %q should be rejected", bands[0].Name)
		}
	}
	if _, err := ExtractBands(nil, DefaultBands()); err == nil {
		t.Error("nil card should be rejected")
	}
}
