package sdfgrid

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestSurfaceSamplerGeometry(t *testing.T) {
	b, err := NewBounds(model3d.Origin, model3d.XYZ(1, 1, 1), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSurfaceSampler(b, 1, DataDimensionGeometry)
	s.AddTriangle(Triangle{{0, 0, 0.5}, {1, 0, 0.5}, {0, 1, 0.5}})

	// The longest edge is sqrt(2), so it is divided into 15 segments.
	points := s.Points()
	if points.Len() != 15*15 {
		t.Fatalf("expected %d points but got %d", 15*15, points.Len())
	}
	var sum model3d.Coord3D
	for i := 0; i < points.Len(); i++ {
		c := points.Coord(i)
		if c.Z != 0.5 || c.X < 0 || c.Y < 0 || c.X+c.Y > 1 {
			t.Fatalf("point %v is not on the triangle", c)
		}
		sum = sum.Add(c)
	}
	mean := sum.Scale(1 / float64(points.Len()))
	if mean.Dist(model3d.XYZ(1.0/3, 1.0/3, 0.5)) > 1e-8 {
		t.Errorf("mean should be the centroid but got %v", mean)
	}
}

func TestSurfaceSamplerDegenerate(t *testing.T) {
	b, err := NewBounds(model3d.Origin, model3d.XYZ(1, 1, 1), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSurfaceSampler(b, 1, DataDimensionGeometry)
	s.AddTriangle(Triangle{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}})
	if s.PointCount() != 0 {
		t.Errorf("degenerate triangle produced %d points", s.PointCount())
	}
}

func TestSurfaceSamplerAttributes(t *testing.T) {
	b, err := NewBounds(model3d.Origin, model3d.XYZ(1, 1, 1), 0.25)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSurfaceSampler(b, 1, DataDimensionTextureIndex)
	s.AddTriangle(Triangle{
		{0, 0, 0, 0, 0, 7},
		{1, 0, 0, 1, 0, 8},
		{0, 1, 0, 0, 1, 9},
	})
	points := s.Points()
	if points.NumAttrs() != 3 {
		t.Fatalf("unexpected attribute count %d", points.NumAttrs())
	}
	var attrs []float64
	for i := 0; i < points.Len(); i++ {
		c := points.Coord(i)
		attrs = points.Attributes(i, attrs)
		if math.Abs(attrs[0]-c.X) > 1e-8 || math.Abs(attrs[1]-c.Y) > 1e-8 {
			t.Fatalf("texture coordinates %v do not match point %v", attrs[:2], c)
		}
		// The vertex with the largest weight wins, preferring earlier
		// vertices on ties.
		weights := [3]float64{1 - c.X - c.Y, c.X, c.Y}
		best := 0
		for j := 1; j < 3; j++ {
			if weights[j] > weights[best] {
				best = j
			}
		}
		expected := 7 + float64(best)
		if attrs[2] != expected {
			t.Fatalf("point %v: expected texture index %f but got %f", c, expected, attrs[2])
		}
	}
}

func TestPointSetUnits(t *testing.T) {
	b, err := NewBounds(model3d.XYZ(-1, -2, -3), model3d.XYZ(1, 2, 3), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPointSet(0)
	p.Add(model3d.XYZ(0, 0, 0), nil)
	p.ToGridUnits(b)
	if !p.GridUnits() || p.Coord(0) != model3d.XYZ(2, 4, 6) {
		t.Fatalf("unexpected grid coordinate %v", p.Coord(0))
	}
	p.ToGridUnits(b)
	if p.Coord(0) != model3d.XYZ(2, 4, 6) {
		t.Fatal("conversion should be idempotent")
	}
	p.ToWorldUnits(b)
	if p.GridUnits() || p.Coord(0) != model3d.Origin {
		t.Fatalf("unexpected world coordinate %v", p.Coord(0))
	}
}
