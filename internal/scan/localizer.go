package scan

import (
	"fmt"
	"image"

	"github.com/cardmat/cardscan/internal/contour"
	"github.com/cardmat/cardscan/internal/layout"
	"github.com/cardmat/cardscan/internal/preprocess"
)

// Localizer finds the card outline in a frame. A failed frame is reported
// as layout.NoResult rather than an error; the error return carries only
// infrastructure failures (a broken detector, a bad frame) and is advisory,
// the orchestrator logs it and treats the frame as empty.
type Localizer interface {
	Localize(img image.Image) (layout.Result, error)
}

// MarkerDetector produces raw fiducial marker detections for a frame. It is
// the seam for plugging in an external marker pipeline; the orchestrator
// never interprets markers itself.
type MarkerDetector interface {
	Detect(img image.Image) ([]layout.Marker, error)
}

// MarkerLocalizer derives the card quadrilateral from detected fiducial
// markers via the layout resolver.
type MarkerLocalizer struct {
	detector MarkerDetector
	resolver *layout.Resolver
}

// NewMarkerLocalizer wires a detector to a resolver.
func NewMarkerLocalizer(det MarkerDetector, res *layout.Resolver) *MarkerLocalizer {
	return &MarkerLocalizer{detector: det, resolver: res}
}

// Localize runs marker detection and resolves the markers into a card quad.
func (l *MarkerLocalizer) Localize(img image.Image) (layout.Result, error) {
	markers, err := l.detector.Detect(img)
	if err != nil {
		return layout.NoResult(), fmt.Errorf("marker detection: %w", err)
	}
	return l.resolver.Locate(markers), nil
}

// ContourLocalizer finds the card outline without markers, by binarizing
// the frame and fitting a quadrilateral to the dominant connected region.
type ContourLocalizer struct {
	opts preprocess.Options
	loc  *contour.Localizer
}

// NewContourLocalizer builds a contour-based localizer from binarization
// options and contour gating parameters.
func NewContourLocalizer(opts preprocess.Options, params contour.Params) *ContourLocalizer {
	return &ContourLocalizer{opts: opts, loc: contour.NewLocalizer(params)}
}

// Localize binarizes the frame and fits the card quadrilateral.
func (l *ContourLocalizer) Localize(img image.Image) (layout.Result, error) {
	bin := preprocess.Binarize(img, l.opts)
	return l.loc.Locate(bin), nil
}
