package layout

import (
	"errors"
	"fmt"

	"github.com/cardmat/cardscan/internal/geometry"
)

// ErrInsufficientEvidence reports that a frame did not contain enough
// markers (or any usable contour) to locate the card. It is the ordinary
// "nothing this frame" condition, not a fault.
var ErrInsufficientEvidence = errors.New("insufficient evidence")

// Marker is one fiducial marker detected in a frame.
//
// Corners follow the detector's winding: top-left, top-right, bottom-right,
// bottom-left of the marker square. IDs are trusted as decoded; this package
// performs no identity verification.
type Marker struct {
	ID      int           `json:"id"`
	Corners geometry.Quad `json:"corners"`
}

// PhysicalLayout describes the fixed geometry of a scanning mat.
//
// All dimensions must share one unit. Arrangement assigns a marker ID to
// each corner role, indexed by the geometry corner constants (TopLeft
// through BottomLeft). The struct is immutable for the lifetime of a
// scanning session.
type PhysicalLayout struct {
	CardWidth   float64 `json:"card_width"`
	CardHeight  float64 `json:"card_height"`
	MarkerSize  float64 `json:"marker_size"`
	Gap         float64 `json:"gap"`
	Arrangement [4]int  `json:"arrangement"`
}

// DefaultCardLayout returns the stock trading-card mat: a 63.5 x 88.9 mm
// card, 20 mm markers, a 10 mm gap, and marker IDs 0-3 placed clockwise
// from the top-left corner.
func DefaultCardLayout() PhysicalLayout {
	return PhysicalLayout{
		CardWidth:   63.5,
		CardHeight:  88.9,
		MarkerSize:  20,
		Gap:         10,
		Arrangement: [4]int{0, 1, 2, 3},
	}
}

// Validate checks that the layout's dimensions are positive and that no
// marker ID is assigned to more than one corner role.
func (l PhysicalLayout) Validate() error {
	if l.CardWidth <= 0 || l.CardHeight <= 0 {
		return fmt.Errorf("card dimensions must be positive (got %g x %g)", l.CardWidth, l.CardHeight)
	}
	if l.MarkerSize <= 0 {
		return fmt.Errorf("marker size must be positive (got %g)", l.MarkerSize)
	}
	if l.Gap < 0 {
		return fmt.Errorf("gap must be non-negative (got %g)", l.Gap)
	}
	seen := make(map[int]int, 4)
	for role, id := range l.Arrangement {
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("marker ID %d assigned to both corner roles %d and %d", id, prev, role)
		}
		seen[id] = role
	}
	return nil
}

// AspectRatio returns the card's width/height ratio.
func (l PhysicalLayout) AspectRatio() float64 {
	return l.CardWidth / l.CardHeight
}

// MatPositions returns the physical offsets of the four marker centers from
// the mat center, indexed by corner role, in image orientation (Y down).
//
// Each marker center sits one half card, one gap, and one half marker away
// from the mat center along both axes. These offsets mirror how the printed
// mat is generated and are used to synthesize test frames.
func (l PhysicalLayout) MatPositions() [4]geometry.Point {
	dx := l.CardWidth/2 + l.Gap + l.MarkerSize/2
	dy := l.CardHeight/2 + l.Gap + l.MarkerSize/2
	return [4]geometry.Point{
		geometry.TopLeft:     {X: -dx, Y: -dy},
		geometry.TopRight:    {X: dx, Y: -dy},
		geometry.BottomRight: {X: dx, Y: dy},
		geometry.BottomLeft:  {X: -dx, Y: dy},
	}
}

// Method identifies which localization strategy produced a Result.
type Method int

const (
	// MethodNone means no usable localization was produced.
	MethodNone Method = iota
	// MethodFourMarker is the full bilinear four-marker solution.
	MethodFourMarker
	// MethodDiagonal approximates the card from two diagonally opposite markers.
	MethodDiagonal
	// MethodEdge constructs the card from two adjacent markers and the known
	// physical extent along the unseen axis.
	MethodEdge
	// MethodGeneric is the bounding-box fallback with a proportional inset.
	MethodGeneric
	// MethodContour comes from the marker-free contour localizer.
	MethodContour
)

func (m Method) String() string {
	switch m {
	case MethodFourMarker:
		return "four-marker"
	case MethodDiagonal:
		return "diagonal"
	case MethodEdge:
		return "edge"
	case MethodGeneric:
		return "generic"
	case MethodContour:
		return "contour"
	default:
		return "none"
	}
}

// Result is one frame's best card-position estimate.
//
// Quad is nil when nothing was located; Confidence is then 0. Results are
// produced fresh each frame and are not retained past the stabilizer.
type Result struct {
	Quad       *geometry.Quad `json:"quad,omitempty"`
	Confidence float64        `json:"confidence"`
	Method     Method         `json:"method"`
}

// NoResult is the empty localization for a frame with nothing usable.
func NoResult() Result {
	return Result{Method: MethodNone}
}
