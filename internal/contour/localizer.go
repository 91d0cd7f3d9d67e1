package contour

import (
	"image"
	"math"
	"sort"

	"github.com/cardmat/cardscan/internal/geometry"
	"github.com/cardmat/cardscan/internal/layout"
)

// Params tunes candidate gating and scoring.
//
// The area, aspect and solidity limits are hard gates: candidates outside
// them are discarded regardless of score. The weights only rank candidates
// that survive the gates.
type Params struct {
	// MinAreaFraction and MaxAreaFraction bound a region's area relative to
	// the frame area. The lower bound rejects noise; the upper bound rejects
	// near-full-frame false positives such as the mat itself.
	MinAreaFraction float64
	MaxAreaFraction float64

	// ApproxEpsilonFrac is the polygon simplification tolerance as a
	// fraction of the region's hull perimeter.
	ApproxEpsilonFrac float64

	// AspectRatio is the expected width/height ratio of the target object.
	// Candidates whose ratio deviates by more than AspectTolerance
	// (relative) are discarded. Orientation is ignored: a rotated card
	// presents the inverse ratio and still matches.
	AspectRatio     float64
	AspectTolerance float64

	// MinSolidity is the minimum ratio of region pixel area to the area of
	// its minimum-area bounding rectangle. Rejects L-shapes and concave
	// near-rectangles.
	MinSolidity float64

	// Scoring weights. They should sum to 1 so the best score maps onto a
	// [0,1] confidence.
	AreaWeight     float64
	AspectWeight   float64
	SolidityWeight float64
	CenterWeight   float64
}

// DefaultParams returns gates and weights tuned for a trading card on a
// contrasting mat.
func DefaultParams(aspect float64) Params {
	return Params{
		MinAreaFraction:   0.05,
		MaxAreaFraction:   0.90,
		ApproxEpsilonFrac: 0.03,
		AspectRatio:       aspect,
		AspectTolerance:   0.25,
		MinSolidity:       0.80,
		AreaWeight:        0.35,
		AspectWeight:      0.30,
		SolidityWeight:    0.20,
		CenterWeight:      0.15,
	}
}

// Localizer finds the best card-shaped region in binary frames. It holds no
// per-frame state.
type Localizer struct {
	params Params
}

// NewLocalizer creates a localizer with the given parameters.
func NewLocalizer(p Params) *Localizer {
	return &Localizer{params: p}
}

// candidate is one gated region with its scoring inputs.
type candidate struct {
	quad     geometry.Quad
	area     float64 // pixel area as fraction of frame
	aspect   float64 // closeness of aspect ratio to target, 0..1
	solidity float64
	center   float64 // proximity to frame center, 0..1
}

func (c candidate) score(p Params) float64 {
	return p.AreaWeight*c.area +
		p.AspectWeight*c.aspect +
		p.SolidityWeight*c.solidity +
		p.CenterWeight*c.center
}

// Locate finds the highest-scoring quadrilateral region in bin.
//
// Foreground is any pixel with value >= 128. Regions are gated on area
// fraction, aspect ratio and solidity, reduced to four corners, and the
// survivors ranked by the weighted score. Returns an empty result when no
// region passes the gates.
func (l *Localizer) Locate(bin *image.Gray) layout.Result {
	if bin == nil {
		return layout.NoResult()
	}
	bounds := bin.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	frameArea := float64(width * height)
	if frameArea == 0 {
		return layout.NoResult()
	}

	p := l.params
	frameCenter := geometry.Point{X: float64(width) / 2, Y: float64(height) / 2}
	halfDiag := frameCenter.Len()

	regions := findRegions(bin, int(p.MinAreaFraction*frameArea))

	var best *candidate
	var bestScore float64
	for _, reg := range regions {
		areaFrac := float64(reg.pixels) / frameArea
		if areaFrac < p.MinAreaFraction || areaFrac > p.MaxAreaFraction {
			continue
		}

		hull := convexHull(reg.points)
		if len(hull) < 4 {
			continue
		}

		rectArea, rectW, rectH := minAreaRect(hull)
		if rectArea < geometry.Epsilon {
			continue
		}

		solidity := float64(reg.pixels) / rectArea
		if solidity < p.MinSolidity {
			continue
		}

		short, long := rectW, rectH
		if short > long {
			short, long = long, short
		}
		targetShort, targetLong := p.AspectRatio, 1.0
		if targetShort > targetLong {
			targetShort, targetLong = targetLong, targetShort
		}
		ratio := short / long
		target := targetShort / targetLong
		aspectDev := math.Abs(ratio-target) / target
		if aspectDev > p.AspectTolerance {
			continue
		}

		poly := reduceToQuad(hull, p.ApproxEpsilonFrac)
		if poly == nil {
			continue
		}
		quad := geometry.OrderQuad(*poly)
		if !quad.IsConvex() {
			continue
		}

		cand := candidate{
			quad:     quad,
			area:     areaFrac,
			aspect:   1 - aspectDev/p.AspectTolerance,
			solidity: math.Min(solidity, 1),
			center:   1 - math.Min(quad.Center().DistanceTo(frameCenter)/halfDiag, 1),
		}
		if s := cand.score(p); best == nil || s > bestScore {
			c := cand
			best = &c
			bestScore = s
		}
	}

	if best == nil {
		return layout.NoResult()
	}
	q := best.quad
	conf := math.Min(math.Max(bestScore, 0), 1)
	return layout.Result{Quad: &q, Confidence: conf, Method: layout.MethodContour}
}

// region is one connected foreground component.
type region struct {
	pixels int
	points []image.Point
}

// findRegions groups 8-connected foreground pixels into regions using an
// iterative flood fill. Regions smaller than minPixels are dropped early to
// bound memory on noisy frames.
func findRegions(bin *image.Gray, minPixels int) []region {
	bounds := bin.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	visited := make([]bool, width*height)
	fg := func(x, y int) bool {
		return bin.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y >= 128
	}

	var regions []region
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !fg(x, y) {
				continue
			}

			points := make([]image.Point, 0, 256)
			stack := []image.Point{{X: x, Y: y}}
			for len(stack) > 0 {
				pt := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if pt.X < 0 || pt.X >= width || pt.Y < 0 || pt.Y >= height {
					continue
				}
				idx := pt.Y*width + pt.X
				if visited[idx] || !fg(pt.X, pt.Y) {
					continue
				}
				visited[idx] = true
				points = append(points, pt)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						stack = append(stack, image.Point{X: pt.X + dx, Y: pt.Y + dy})
					}
				}
			}

			if len(points) >= minPixels {
				regions = append(regions, region{pixels: len(points), points: points})
			}
		}
	}
	return regions
}

// convexHull computes the convex hull of pts with the monotone chain
// algorithm, returned in counter-clockwise order (screen coordinates).
func convexHull(pts []image.Point) []geometry.Point {
	if len(pts) < 3 {
		return nil
	}

	sorted := make([]image.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(sorted))
	// Lower hull.
	for _, pt := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	// Upper hull.
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		pt := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	hull = hull[:len(hull)-1]

	out := make([]geometry.Point, len(hull))
	for i, pt := range hull {
		out[i] = geometry.Point{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return out
}

// polygonPerimeter returns the closed perimeter length of poly.
func polygonPerimeter(poly []geometry.Point) float64 {
	var per float64
	for i := range poly {
		per += poly[i].DistanceTo(poly[(i+1)%len(poly)])
	}
	return per
}

// reduceToQuad simplifies a convex polygon down to four vertices by
// repeatedly removing the vertex whose removal deviates least from the
// polygon, as long as that deviation stays within epsFrac of the perimeter.
//
// Returns nil when the polygon cannot be reduced to exactly four vertices
// within tolerance, meaning the region is not quadrilateral enough.
func reduceToQuad(hull []geometry.Point, epsFrac float64) *[4]geometry.Point {
	if len(hull) < 4 {
		return nil
	}

	eps := polygonPerimeter(hull) * epsFrac
	poly := make([]geometry.Point, len(hull))
	copy(poly, hull)

	for len(poly) > 4 {
		bestIdx := -1
		bestDev := math.Inf(1)
		for i := range poly {
			prev := poly[(i+len(poly)-1)%len(poly)]
			next := poly[(i+1)%len(poly)]
			dev := pointToSegment(poly[i], prev, next)
			if dev < bestDev {
				bestDev = dev
				bestIdx = i
			}
		}
		if bestDev > eps {
			// Every remaining vertex is significant: not a quadrilateral.
			return nil
		}
		poly = append(poly[:bestIdx], poly[bestIdx+1:]...)
	}

	var out [4]geometry.Point
	copy(out[:], poly)
	return &out
}

// pointToSegment returns the distance from p to segment ab.
func pointToSegment(p, a, b geometry.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < geometry.Epsilon {
		return p.DistanceTo(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.DistanceTo(a.Add(ab.Scale(t)))
}

// minAreaRect computes the minimum-area bounding rectangle of a convex
// polygon by testing a rectangle aligned with each hull edge (rotating
// calipers). Returns the rectangle's area and side lengths.
func minAreaRect(hull []geometry.Point) (area, w, h float64) {
	area = math.Inf(1)
	for i := range hull {
		edge := hull[(i+1)%len(hull)].Sub(hull[i])
		u, ok := geometry.Normalize(edge)
		if !ok {
			continue
		}
		v := geometry.Perp(u)

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := p.Dot(u)
			pv := p.Dot(v)
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		cw := maxU - minU
		ch := maxV - minV
		if a := cw * ch; a < area {
			area, w, h = a, cw, ch
		}
	}
	if math.IsInf(area, 1) {
		return 0, 0, 0
	}
	return area, w, h
}
