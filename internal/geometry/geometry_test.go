package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	v, ok := Normalize(Point{3, 4})
	if !ok {
		t.Fatal("Normalize failed for non-zero vector")
	}
	if math.Abs(v.Len()-1) > 1e-12 {
		t.Errorf("unit length: got %g", v.Len())
	}
	if math.Abs(v.X-0.6) > 1e-12 || math.Abs(v.Y-0.8) > 1e-12 {
		t.Errorf("direction: got (%g, %g), want (0.6, 0.8)", v.X, v.Y)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v, ok := Normalize(Point{0, 0})
	if ok {
		t.Error("Normalize should fail for zero vector")
	}
	if v.X != 0 || v.Y != 0 {
		t.Errorf("sentinel: got (%g, %g), want (0, 0)", v.X, v.Y)
	}

	// Sub-epsilon magnitude counts as degenerate too.
	if _, ok := Normalize(Point{1e-12, -1e-12}); ok {
		t.Error("Normalize should fail for sub-epsilon vector")
	}
}

func TestPerp_PointsInward(t *testing.T) {
	// Edges of a quad traversed TL->TR->BR->BL. The perpendicular of each
	// edge must point toward the quad interior.
	tests := []struct {
		name   string
		edge   Point
		inward Point
	}{
		{"top edge", Point{1, 0}, Point{0, 1}},
		{"right edge", Point{0, 1}, Point{-1, 0}},
		{"bottom edge", Point{-1, 0}, Point{0, -1}},
		{"left edge", Point{0, -1}, Point{1, 0}},
	}
	for _, tt := range tests {
		got := Perp(tt.edge)
		if got != tt.inward {
			t.Errorf("%s: Perp(%v) = %v, want %v", tt.name, tt.edge, got, tt.inward)
		}
	}
}

func TestOrderQuad(t *testing.T) {
	want := Quad{{10, 10}, {90, 12}, {92, 88}, {8, 90}}

	// Feed the corners in every scrambled rotation; ordering must recover
	// the canonical winding.
	scrambles := [][4]Point{
		{want[2], want[0], want[3], want[1]},
		{want[3], want[2], want[1], want[0]},
		{want[1], want[3], want[0], want[2]},
	}
	for i, pts := range scrambles {
		got := OrderQuad(pts)
		if got != want {
			t.Errorf("scramble %d: got %v, want %v", i, got, want)
		}
	}
}

func TestOrderQuad_NearTies(t *testing.T) {
	// Slightly rotated rectangle: top corners differ in Y by less than the
	// corner spacing. Ordering must not cross the quad.
	q := OrderQuad([4]Point{{100, 9}, {12, 90}, {10, 11}, {98, 92}})
	if !q.IsConvex() {
		t.Errorf("ordered quad is not convex: %v", q)
	}
	if q[TopLeft].X > q[TopRight].X || q[BottomLeft].X > q[BottomRight].X {
		t.Errorf("left/right order violated: %v", q)
	}
}

func TestQuadIsConvex(t *testing.T) {
	if !RectQuad(0, 0, 10, 10).IsConvex() {
		t.Error("axis-aligned rectangle should be convex")
	}

	crossed := Quad{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	if crossed.IsConvex() {
		t.Error("self-intersecting quad should not be convex")
	}

	degenerate := Quad{{0, 0}, {5, 0}, {10, 0}, {15, 0}}
	if degenerate.IsConvex() {
		t.Error("collinear quad should not be convex")
	}
}

func TestSolveHomography_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  Quad
		dst  Quad
	}{
		{
			"identity",
			RectQuad(0, 0, 100, 100),
			RectQuad(0, 0, 100, 100),
		},
		{
			"scale and translate",
			RectQuad(10, 20, 110, 220),
			RectQuad(0, 0, 50, 100),
		},
		{
			"perspective skew",
			Quad{{32, 41}, {290, 30}, {310, 400}, {10, 380}},
			RectQuad(0, 0, 250, 350),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := SolveHomography(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("SolveHomography failed: %v", err)
			}
			for i := 0; i < 4; i++ {
				got, err := h.Apply(tt.src[i])
				if err != nil {
					t.Fatalf("Apply corner %d: %v", i, err)
				}
				if got.DistanceTo(tt.dst[i]) > 1e-6 {
					t.Errorf("corner %d: got (%g, %g), want (%g, %g)",
						i, got.X, got.Y, tt.dst[i].X, tt.dst[i].Y)
				}
			}
		})
	}
}

func TestSolveHomography_Degenerate(t *testing.T) {
	collinear := Quad{{0, 0}, {10, 0}, {20, 0}, {30, 0}}
	_, err := SolveHomography(collinear, RectQuad(0, 0, 10, 10))
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}

	coincident := Quad{{5, 5}, {5, 5}, {5, 5}, {5, 5}}
	_, err = SolveHomography(coincident, RectQuad(0, 0, 10, 10))
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestHomographyInvert(t *testing.T) {
	src := Quad{{32, 41}, {290, 30}, {310, 400}, {10, 380}}
	dst := RectQuad(0, 0, 250, 350)

	h, err := SolveHomography(src, dst)
	if err != nil {
		t.Fatalf("SolveHomography failed: %v", err)
	}
	inv, err := h.Invert()
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		back, err := inv.Apply(dst[i])
		if err != nil {
			t.Fatalf("Apply corner %d: %v", i, err)
		}
		if back.DistanceTo(src[i]) > 1e-6 {
			t.Errorf("corner %d: inverse maps to (%g, %g), want (%g, %g)",
				i, back.X, back.Y, src[i].X, src[i].Y)
		}
	}
}

func TestQuadEdgeLengthsAndCenter(t *testing.T) {
	q := RectQuad(0, 0, 40, 30)
	edges := q.EdgeLengths()
	want := [4]float64{40, 30, 40, 30}
	for i := range edges {
		if math.Abs(edges[i]-want[i]) > 1e-12 {
			t.Errorf("edge %d: got %g, want %g", i, edges[i], want[i])
		}
	}
	if c := q.Center(); c.X != 20 || c.Y != 15 {
		t.Errorf("center: got (%g, %g), want (20, 15)", c.X, c.Y)
	}
}
