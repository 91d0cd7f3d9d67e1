package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateGeometry reports input whose geometry collapses (coincident
// points, a singular correspondence system, or a vanishing projective
// denominator). Callers treat it as "no usable detection", not a fault.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Homography is a 3x3 projective transform stored row-major.
//
// Applying H to a point (x, y) maps the homogeneous vector (x, y, 1) through
// the matrix and divides by the resulting w component.
type Homography [9]float64

// SolveHomography computes the exact homography mapping each corner of src
// onto the corresponding corner of dst.
//
// With exactly four correspondences the transform is fully determined, so
// this solves the 8x8 linear system of the Direct Linear Transform in closed
// form (Gaussian elimination with partial pivoting) rather than using an
// iterative least-squares or eigenvector approximation. The last matrix
// entry is fixed at 1.
//
// Returns ErrDegenerateGeometry when three or more source points are
// collinear or coincident, which makes the system singular.
func SolveHomography(src, dst Quad) (Homography, error) {
	var a [8][8]float64
	var b [8]float64

	for i := 0; i < 4; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		r := 2 * i

		a[r] = [8]float64{sx, sy, 1, 0, 0, 0, -sx * dx, -sy * dx}
		b[r] = dx

		a[r+1] = [8]float64{0, 0, 0, sx, sy, 1, -sx * dy, -sy * dy}
		b[r+1] = dy
	}

	h, err := solveLinear8(a, b)
	if err != nil {
		return Homography{}, err
	}

	return Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, nil
}

// Apply maps p through the homography.
//
// Returns ErrDegenerateGeometry when the homogeneous denominator vanishes,
// which means p lies on (or numerically near) the transform's horizon line
// and has no finite image.
func (h Homography) Apply(p Point) (Point, error) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < Epsilon {
		return Point{}, fmt.Errorf("projective divide at (%g, %g): %w", p.X, p.Y, ErrDegenerateGeometry)
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, nil
}

// Invert returns the inverse homography, computed from the adjugate matrix.
//
// Returns ErrDegenerateGeometry when the determinant is near zero.
func (h Homography) Invert() (Homography, error) {
	det := h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
	if math.Abs(det) < Epsilon {
		return Homography{}, fmt.Errorf("singular homography: %w", ErrDegenerateGeometry)
	}

	inv := Homography{
		h[4]*h[8] - h[5]*h[7],
		h[2]*h[7] - h[1]*h[8],
		h[1]*h[5] - h[2]*h[4],
		h[5]*h[6] - h[3]*h[8],
		h[0]*h[8] - h[2]*h[6],
		h[2]*h[3] - h[0]*h[5],
		h[3]*h[7] - h[4]*h[6],
		h[1]*h[6] - h[0]*h[7],
		h[0]*h[4] - h[1]*h[3],
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv, nil
}

// solveLinear8 solves a*x = b by Gaussian elimination with partial pivoting.
func solveLinear8(a [8][8]float64, b [8]float64) ([8]float64, error) {
	for col := 0; col < 8; col++ {
		// Partial pivot: bring the largest remaining entry into place.
		pivot := col
		maxAbs := math.Abs(a[col][col])
		for r := col + 1; r < 8; r++ {
			if v := math.Abs(a[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs < Epsilon {
			return [8]float64{}, fmt.Errorf("singular correspondence system: %w", ErrDegenerateGeometry)
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		div := a[col][col]
		for c := col; c < 8; c++ {
			a[col][c] /= div
		}
		b[col] /= div

		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c < 8; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}
	return b, nil
}
