package geometry

import "math"

// Epsilon is the magnitude below which lengths and homogeneous denominators
// are treated as zero.
const Epsilon = 1e-9

// Point represents a 2D coordinate (or free vector) in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the 2D cross product p × q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 { return p.Sub(q).Len() }

// Normalize returns the unit vector in the direction of v.
//
// Returns the zero vector and false when |v| < Epsilon, which happens when
// two supposedly distinct points coincide. Callers must check the flag before
// using the result for direction-dependent offsets.
func Normalize(v Point) (Point, bool) {
	l := v.Len()
	if l < Epsilon {
		return Point{}, false
	}
	return Point{v.X / l, v.Y / l}, true
}

// Perp returns v rotated 90 degrees clockwise on screen.
//
// In image coordinates (Y down) this maps (1,0) to (0,1). For a quad
// traversed in TL, TR, BR, BL order the perpendicular of each edge vector
// points into the quad, which is the direction inward offsets need.
func Perp(v Point) Point { return Point{-v.Y, v.X} }
