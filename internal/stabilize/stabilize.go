// Package stabilize debounces per-frame localization results.
//
// Live-camera detections flicker: a marker lost for a frame, a contour that
// only matched once. The stabilizer trusts a detection for action only after
// it has been present on enough consecutive frames, and drops all accumulated
// trust the moment a frame yields nothing. Preferring a missed action over a
// stale-looking detection is deliberate; there is no hysteresis on the losing
// side.
package stabilize

import (
	"github.com/cardmat/cardscan/internal/geometry"
	"github.com/cardmat/cardscan/internal/layout"
)

// DefaultThreshold is the number of consecutive positive frames required
// before a detection is reported Stable.
const DefaultThreshold = 3

// State is the stabilizer's observable condition.
type State int

const (
	// NoDetection means the last frame yielded nothing. Initial state.
	NoDetection State = iota
	// Stabilizing means detections are present but not yet trusted.
	Stabilizing
	// Stable means the detection has persisted past the threshold.
	Stable
)

func (s State) String() string {
	switch s {
	case Stabilizing:
		return "stabilizing"
	case Stable:
		return "stable"
	default:
		return "no-detection"
	}
}

// Status is the outcome of observing one frame.
//
// Quad is the most recent detection, nil in NoDetection. Consecutive counts
// the unbroken run of positive frames including this one.
type Status struct {
	State       State
	Quad        *geometry.Quad
	Consecutive int
}

// Stabilizer tracks consecutive detections across frames. It is the only
// component in the localization pipeline with cross-frame state, and it is
// not safe for concurrent use; the owning orchestrator serializes access.
type Stabilizer struct {
	threshold   int
	consecutive int
	lastQuad    *geometry.Quad
}

// New creates a stabilizer. A threshold below 1 uses DefaultThreshold.
func New(threshold int) *Stabilizer {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Stabilizer{threshold: threshold}
}

// Observe feeds one frame's localization result through the state machine.
//
// A present quad increments the consecutive counter and reports Stable once
// the counter reaches the threshold. An absent quad resets the counter and
// the stored quad immediately.
func (s *Stabilizer) Observe(res layout.Result) Status {
	if res.Quad == nil {
		s.Reset()
		return Status{State: NoDetection}
	}

	s.consecutive++
	q := *res.Quad
	s.lastQuad = &q

	state := Stabilizing
	if s.consecutive >= s.threshold {
		state = Stable
	}
	return Status{State: state, Quad: s.lastQuad, Consecutive: s.consecutive}
}

// Reset returns the stabilizer to its initial state.
func (s *Stabilizer) Reset() {
	s.consecutive = 0
	s.lastQuad = nil
}
