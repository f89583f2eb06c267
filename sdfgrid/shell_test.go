package sdfgrid

import (
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestBuildShellBand(t *testing.T) {
	b := testCubeBounds(t, 8)

	points := gridPointSet(model3d.XYZ(2.5, 2.5, 2.5))
	grid := NewIndexGrid(b)
	BuildShell(points, grid, 1)
	// The containing voxel and its six face neighbors.
	if n := grid.NumSet(); n != 7 {
		t.Errorf("expected 7 seeded voxels but got %d", n)
	}
	if grid.Get(3, 2, 2) != 0 || grid.Get(3, 3, 2) != Unset {
		t.Error("unexpected band shape")
	}

	grid = NewIndexGrid(b)
	BuildShell(gridPointSet(model3d.XYZ(2.2, 2.9, 2.1)), grid, 0)
	if n := grid.NumSet(); n != 1 || grid.Get(2, 2, 2) != 0 {
		t.Errorf("only the containing voxel should be seeded, got %d", n)
	}
}

func TestBuildShellNearest(t *testing.T) {
	b := testCubeBounds(t, 8)
	points := gridPointSet(
		model3d.XYZ(2.75, 2.5, 2.5),
		model3d.XYZ(2.25, 2.5, 2.5),
		model3d.XYZ(3.4, 2.5, 2.5),
	)
	grid := NewIndexGrid(b)
	BuildShell(points, grid, 1.5)
	if idx := grid.Get(2, 2, 2); idx != 0 {
		t.Errorf("tie should go to the lowest index, got %d", idx)
	}
	if idx := grid.Get(3, 2, 2); idx != 2 {
		t.Errorf("expected nearest point 2 but got %d", idx)
	}
	if idx := grid.Get(1, 2, 2); idx != 1 {
		t.Errorf("expected nearest point 1 but got %d", idx)
	}
}

func TestBuildShellEdge(t *testing.T) {
	b := testCubeBounds(t, 8)
	grid := NewIndexGrid(b)
	BuildShell(gridPointSet(model3d.XYZ(0.1, 7.9, 0.5)), grid, 2)
	if grid.Get(0, 7, 0) != 0 {
		t.Error("containing voxel should be seeded")
	}
	for _, idx := range grid.Indices {
		if idx != Unset && idx != 0 {
			t.Fatalf("unexpected index %d", idx)
		}
	}
}

// testCubeBounds creates bounds [0, n]^3 with unit voxels, so that world
// units and grid units coincide.
func testCubeBounds(t *testing.T, n int) *Bounds {
	b, err := NewBounds(model3d.Origin, model3d.XYZ(float64(n), float64(n), float64(n)), 1)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func gridPointSet(coords ...model3d.Coord3D) *PointSet {
	p := NewPointSet(0)
	for _, c := range coords {
		p.Add(c, nil)
	}
	p.gridUnits = true
	return p
}
