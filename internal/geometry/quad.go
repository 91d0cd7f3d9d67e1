package geometry

import "sort"

// Quad is an ordered quadrilateral: top-left, top-right, bottom-right,
// bottom-left. The winding is clockwise on screen (Y down).
type Quad [4]Point

// Corner indices into a Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Center returns the centroid of the four corners.
func (q Quad) Center() Point {
	var c Point
	for _, p := range q {
		c = c.Add(p)
	}
	return c.Scale(0.25)
}

// BoundingBox returns the axis-aligned bounding box as (min, max) corners.
func (q Quad) BoundingBox() (Point, Point) {
	min, max := q[0], q[0]
	for _, p := range q[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// EdgeLengths returns the lengths of the top, right, bottom and left edges.
func (q Quad) EdgeLengths() [4]float64 {
	return [4]float64{
		q[TopRight].DistanceTo(q[TopLeft]),
		q[BottomRight].DistanceTo(q[TopRight]),
		q[BottomLeft].DistanceTo(q[BottomRight]),
		q[TopLeft].DistanceTo(q[BottomLeft]),
	}
}

// IsConvex reports whether the quad is convex and non-degenerate.
//
// All four cross products of consecutive edges must have the same sign. A
// convex quad traversed in corner order is necessarily simple
// (non-self-intersecting), which is the invariant the homography solver and
// rectifier rely on.
func (q Quad) IsConvex() bool {
	sign := 0
	for i := 0; i < 4; i++ {
		a := q[(i+1)%4].Sub(q[i])
		b := q[(i+2)%4].Sub(q[(i+1)%4])
		cross := a.Cross(b)
		if cross > Epsilon {
			if sign < 0 {
				return false
			}
			sign = 1
		} else if cross < -Epsilon {
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// OrderQuad arranges four arbitrary corner points into TL, TR, BR, BL order.
//
// The points are sorted by Y to split them into a top pair and a bottom pair,
// then each pair is sorted by X. This tolerates near-ties and small rotations
// without producing a crossed quad, which a naive angular sort around the
// centroid can do for strongly skewed perspective views.
func OrderQuad(pts [4]Point) Quad {
	sorted := pts
	sort.Slice(sorted[:], func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	top := [2]Point{sorted[0], sorted[1]}
	bottom := [2]Point{sorted[2], sorted[3]}
	if top[0].X > top[1].X {
		top[0], top[1] = top[1], top[0]
	}
	if bottom[0].X > bottom[1].X {
		bottom[0], bottom[1] = bottom[1], bottom[0]
	}

	return Quad{top[0], top[1], bottom[1], bottom[0]}
}

// RectQuad returns the axis-aligned quad spanning (x0,y0)-(x1,y1).
func RectQuad(x0, y0, x1, y1 float64) Quad {
	return Quad{
		{x0, y0},
		{x1, y0},
		{x1, y1},
		{x0, y1},
	}
}
