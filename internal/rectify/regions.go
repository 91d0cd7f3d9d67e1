package rectify

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// BandSpec names a horizontal band of the rectified card, as vertical
// fractions of the canonical height. The fractions are layout policy, not
// invariants; card designs place their text differently.
type BandSpec struct {
	Name   string  `json:"name"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultBands covers the title strip along the top of a trading card and
// the collector-number strip along the bottom.
func DefaultBands() []BandSpec {
	return []BandSpec{
		{Name: "title", Top: 0.02, Bottom: 0.16},
		{Name: "footer", Top: 0.90, Bottom: 1.00},
	}
}

// Region is one recognition-ready crop of the rectified card. Ownership is
// transient: it is handed to the recognizer and discarded.
type Region struct {
	Name  string
	Image *image.NRGBA
}

// ExtractBands crops each named band out of a rectified card image.
//
// Bands with an empty or inverted fraction range, or fractions outside
// [0,1], are rejected; partial results are not returned.
func ExtractBands(card *image.NRGBA, bands []BandSpec) ([]Region, error) {
	if card == nil {
		return nil, fmt.Errorf("nil card image")
	}
	b := card.Bounds()
	h := b.Dy()

	regions := make([]Region, 0, len(bands))
	for _, band := range bands {
		if band.Top < 0 || band.Bottom > 1 || band.Top >= band.Bottom {
			return nil, fmt.Errorf("band %q: invalid fraction range [%g, %g]", band.Name, band.Top, band.Bottom)
		}
		y0 := b.Min.Y + int(band.Top*float64(h))
		y1 := b.Min.Y + int(band.Bottom*float64(h))
		if y1 <= y0 {
			y1 = y0 + 1
		}
		crop := imaging.Crop(card, image.Rect(b.Min.X, y0, b.Max.X, y1))
		regions = append(regions, Region{Name: band.Name, Image: crop})
	}
	return regions, nil
}
