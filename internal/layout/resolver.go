package layout

import (
	"fmt"

	"github.com/cardmat/cardscan/internal/geometry"
)

// Resolver estimates card corners from detected markers using a fixed
// physical layout. It holds no per-frame state; Locate is a pure function
// of its inputs.
type Resolver struct {
	layout PhysicalLayout
}

// NewResolver creates a resolver for the given mat layout.
func NewResolver(l PhysicalLayout) (*Resolver, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &Resolver{layout: l}, nil
}

// Layout returns the resolver's physical layout.
func (r *Resolver) Layout() PhysicalLayout {
	return r.layout
}

// Locate computes the best card-position estimate from one frame's markers.
//
// Strategies are tried in priority order, best available marker subset
// first:
//
//  1. All four corner markers: bilinear per-corner solution. Offsets are
//     derived from local edge directions, so mild perspective skew is
//     tolerated without a global scale.
//  2. Two diagonally opposite markers: axis-aligned approximation from the
//     diagonal and the known physical aspect ratio.
//  3. Two adjacent markers: one card edge plus the known physical extent
//     along the unseen axis, assuming no perspective along that axis.
//  4. Any two or more markers in an unrecognized pattern: bounding box of
//     all marker corners with a layout-proportional inward inset.
//
// Confidence is min(markerCount/4, 1): a linear function of how many of the
// expected markers were seen, deliberately ignoring reprojection error.
// Markers whose IDs match no corner role are ignored except by the bounding
// box fallback. Fewer than two usable markers, or degenerate geometry
// (coincident marker corners), yields an empty Result.
func (r *Resolver) Locate(markers []Marker) Result {
	var byRole [4]*Marker
	ambiguous := [4]bool{}
	matched := make([]Marker, 0, len(markers))

	for i := range markers {
		m := &markers[i]
		role, ok := r.roleOf(m.ID)
		if !ok {
			continue
		}
		matched = append(matched, *m)
		if byRole[role] != nil {
			// Two markers claim the same corner; neither can be trusted
			// for a pattern strategy.
			ambiguous[role] = true
			continue
		}
		byRole[role] = m
	}

	usable := 0
	for role, m := range byRole {
		if ambiguous[role] {
			byRole[role] = nil
			continue
		}
		if m != nil {
			usable++
		}
	}

	switch {
	case usable == 4:
		return r.fourMarker(byRole)
	case usable >= 2:
		if q, ok := r.diagonalPair(byRole); ok {
			return r.patternResult(q, usable, MethodDiagonal)
		}
		if q, ok := r.edgePair(byRole); ok {
			return r.patternResult(q, usable, MethodEdge)
		}
		fallthrough
	case len(matched) >= 2:
		return r.generic(matched, len(matched))
	default:
		return NoResult()
	}
}

// roleOf returns the corner role a marker ID is assigned to.
func (r *Resolver) roleOf(id int) (int, bool) {
	for role, assigned := range r.layout.Arrangement {
		if assigned == id {
			return role, true
		}
	}
	return 0, false
}

// innerCorner returns the marker corner geometrically closest to the card:
// the corner diagonally opposite the marker's role (e.g. the top-left
// marker's bottom-right corner).
func innerCorner(m *Marker, role int) geometry.Point {
	return m.Corners[(role+2)%4]
}

// edgeSpan returns the physical distance between the inner corners joined
// by edge i of the inner-corner quad (edge i runs from corner i to corner
// i+1). Horizontal edges span the card width plus a gap on both sides;
// vertical edges span the height likewise.
func (r *Resolver) edgeSpan(edge int) float64 {
	if edge%2 == 0 {
		return r.layout.CardWidth + 2*r.layout.Gap
	}
	return r.layout.CardHeight + 2*r.layout.Gap
}

func (r *Resolver) patternResult(q geometry.Quad, count int, method Method) Result {
	if !q.IsConvex() {
		return NoResult()
	}
	conf := float64(count) / 4
	if conf > 1 {
		conf = 1
	}
	return Result{Quad: &q, Confidence: conf, Method: method}
}

// fourMarker offsets each inner corner toward the card along the two edges
// meeting at that corner, with a pixels-per-unit scale derived per edge.
func (r *Resolver) fourMarker(byRole [4]*Marker) Result {
	var inner [4]geometry.Point
	for role, m := range byRole {
		inner[role] = innerCorner(m, role)
	}

	var card geometry.Quad
	for role := 0; role < 4; role++ {
		next := (role + 1) % 4
		prev := (role + 3) % 4

		toNext := inner[next].Sub(inner[role])
		toPrev := inner[prev].Sub(inner[role])

		uNext, okN := geometry.Normalize(toNext)
		uPrev, okP := geometry.Normalize(toPrev)
		if !okN || !okP {
			return NoResult()
		}

		// Edge from role to next is edge "role"; edge from prev to role is
		// edge "prev". Each contributes its own local scale.
		sNext := toNext.Len() / r.edgeSpan(role)
		sPrev := toPrev.Len() / r.edgeSpan(prev)

		card[role] = inner[role].
			Add(uNext.Scale(r.layout.Gap * sNext)).
			Add(uPrev.Scale(r.layout.Gap * sPrev))
	}

	return r.patternResult(card, 4, MethodFourMarker)
}

// diagonalPair builds an axis-aligned card estimate from two diagonally
// opposite markers, if such a pair is present.
func (r *Resolver) diagonalPair(byRole [4]*Marker) (geometry.Quad, bool) {
	g := r.layout.Gap
	spanX := r.layout.CardWidth + 2*g
	spanY := r.layout.CardHeight + 2*g

	if tl, br := byRole[geometry.TopLeft], byRole[geometry.BottomRight]; tl != nil && br != nil {
		iTL := innerCorner(tl, geometry.TopLeft)
		iBR := innerCorner(br, geometry.BottomRight)
		sx := (iBR.X - iTL.X) / spanX
		sy := (iBR.Y - iTL.Y) / spanY
		if sx < geometry.Epsilon || sy < geometry.Epsilon {
			return geometry.Quad{}, false
		}
		cardTL := iTL.Add(geometry.Point{X: g * sx, Y: g * sy})
		cardBR := iBR.Sub(geometry.Point{X: g * sx, Y: g * sy})
		return geometry.RectQuad(cardTL.X, cardTL.Y, cardBR.X, cardBR.Y), true
	}

	if tr, bl := byRole[geometry.TopRight], byRole[geometry.BottomLeft]; tr != nil && bl != nil {
		iTR := innerCorner(tr, geometry.TopRight)
		iBL := innerCorner(bl, geometry.BottomLeft)
		sx := (iTR.X - iBL.X) / spanX
		sy := (iBL.Y - iTR.Y) / spanY
		if sx < geometry.Epsilon || sy < geometry.Epsilon {
			return geometry.Quad{}, false
		}
		cardTR := iTR.Add(geometry.Point{X: -g * sx, Y: g * sy})
		cardBL := iBL.Add(geometry.Point{X: g * sx, Y: -g * sy})
		return geometry.RectQuad(cardBL.X, cardTR.Y, cardTR.X, cardBL.Y), true
	}

	return geometry.Quad{}, false
}

// edgePair builds a card estimate from two adjacent markers, if such a pair
// is present. The visible edge fixes position, orientation and scale; the
// card is extruded perpendicular to it by the known physical extent, so
// perspective along the unseen axis is not corrected.
func (r *Resolver) edgePair(byRole [4]*Marker) (geometry.Quad, bool) {
	for edge := 0; edge < 4; edge++ {
		roleA := edge
		roleB := (edge + 1) % 4
		a, b := byRole[roleA], byRole[roleB]
		if a == nil || b == nil {
			continue
		}

		iA := innerCorner(a, roleA)
		iB := innerCorner(b, roleB)
		along := iB.Sub(iA)
		u, ok := geometry.Normalize(along)
		if !ok {
			return geometry.Quad{}, false
		}
		// Perp of the traversal direction points into the card.
		inward := geometry.Perp(u)

		s := along.Len() / r.edgeSpan(edge)
		g := r.layout.Gap * s
		extent := r.layout.CardHeight
		if edge%2 == 1 {
			extent = r.layout.CardWidth
		}

		cardA := iA.Add(u.Scale(g)).Add(inward.Scale(g))
		cardB := iB.Sub(u.Scale(g)).Add(inward.Scale(g))
		far := inward.Scale(extent * s)

		var card geometry.Quad
		card[roleA] = cardA
		card[roleB] = cardB
		card[(roleB+1)%4] = cardB.Add(far)
		card[(roleA+3)%4] = cardA.Add(far)
		return card, true
	}
	return geometry.Quad{}, false
}

// generic takes the bounding box of every marker corner in the frame and
// insets it by the layout's marker-plus-gap margin, expressed as a fraction
// of the box. It depends only on its inputs, so repeated calls on the same
// marker set yield identical output.
func (r *Resolver) generic(markers []Marker, count int) Result {
	if len(markers) < 2 {
		return NoResult()
	}

	min := markers[0].Corners[0]
	max := min
	for _, m := range markers {
		bmin, bmax := m.Corners.BoundingBox()
		if bmin.X < min.X {
			min.X = bmin.X
		}
		if bmin.Y < min.Y {
			min.Y = bmin.Y
		}
		if bmax.X > max.X {
			max.X = bmax.X
		}
		if bmax.Y > max.Y {
			max.Y = bmax.Y
		}
	}

	margin := r.layout.Gap + r.layout.MarkerSize
	fx := margin / (r.layout.CardWidth + 2*margin)
	fy := margin / (r.layout.CardHeight + 2*margin)
	insetX := (max.X - min.X) * fx
	insetY := (max.Y - min.Y) * fy

	if max.X-min.X-2*insetX < geometry.Epsilon || max.Y-min.Y-2*insetY < geometry.Epsilon {
		return NoResult()
	}

	q := geometry.RectQuad(min.X+insetX, min.Y+insetY, max.X-insetX, max.Y-insetY)
	conf := float64(count) / 4
	if conf > 1 {
		conf = 1
	}
	return Result{Quad: &q, Confidence: conf, Method: MethodGeneric}
}
