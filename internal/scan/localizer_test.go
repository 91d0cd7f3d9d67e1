package scan

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/cardmat/cardscan/internal/contour"
	"github.com/cardmat/cardscan/internal/geometry"
	"github.com/cardmat/cardscan/internal/layout"
	"github.com/cardmat/cardscan/internal/preprocess"
)

type fakeDetector struct {
	markers []layout.Marker
	err     error
}

func (d *fakeDetector) Detect(img image.Image) ([]layout.Marker, error) {
	return d.markers, d.err
}

func TestMarkerLocalizerResolvesDiagonalPair(t *testing.T) {
	lay := layout.DefaultCardLayout()
	res, err := layout.NewResolver(lay)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	// Card top-left at (200,200), 2 px/mm. The top-left marker's inner
	// corner sits one gap outside the card corner, diagonally.
	const s = 2.0
	tlInner := geometry.Point{X: 200 - lay.Gap*s, Y: 200 - lay.Gap*s}
	brInner := geometry.Point{
		X: 200 + (lay.CardWidth+lay.Gap)*s,
		Y: 200 + (lay.CardHeight+lay.Gap)*s,
	}
	side := lay.MarkerSize * s
	markers := []layout.Marker{
		{ID: 0, Corners: geometry.RectQuad(tlInner.X-side, tlInner.Y-side, tlInner.X, tlInner.Y)},
		{ID: 2, Corners: geometry.RectQuad(brInner.X, brInner.Y, brInner.X+side, brInner.Y+side)},
	}

	loc := NewMarkerLocalizer(&fakeDetector{markers: markers}, res)
	got, err := loc.Localize(image.NewNRGBA(image.Rect(0, 0, 800, 900)))
	if err != nil {
		t.Fatalf("Localize: %v", err)
	}
	if got.Method != layout.MethodDiagonal || got.Quad == nil {
		t.Fatalf("got method %s quad %v, want diagonal with a quad", got.Method, got.Quad)
	}
	if d := got.Quad[geometry.TopLeft].DistanceTo(geometry.Point{X: 200, Y: 200}); d > 1 {
		t.Errorf("top-left corner off by %.2f px", d)
	}
}

func TestMarkerLocalizerDetectorFailure(t *testing.T) {
	res, err := layout.NewResolver(layout.DefaultCardLayout())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	loc := NewMarkerLocalizer(&fakeDetector{err: errors.New("camera unplugged")}, res)

	got, err := loc.Localize(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	if err == nil {
		t.Fatal("detector failure not surfaced")
	}
	if got.Quad != nil || got.Method != layout.MethodNone {
		t.Fatalf("detector failure yielded a localization: %+v", got)
	}
}

func TestContourLocalizerFindsBrightCard(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 280))
	card := image.Rect(50, 70, 150, 210)
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if image.Pt(x, y).In(card) {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	aspect := 63.5 / 88.9
	loc := NewContourLocalizer(preprocess.DefaultOptions(), contour.DefaultParams(aspect))
	got, err := loc.Localize(img)
	if err != nil {
		t.Fatalf("Localize: %v", err)
	}
	if got.Method != layout.MethodContour || got.Quad == nil {
		t.Fatalf("got method %s quad %v, want contour with a quad", got.Method, got.Quad)
	}
	if d := got.Quad[geometry.TopLeft].DistanceTo(geometry.Point{X: 50, Y: 70}); d > 4 {
		t.Errorf("top-left corner off by %.2f px", d)
	}
}
