package sdfgrid

import (
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestMeshSourceOrder(t *testing.T) {
	mesh := model3d.NewMeshIcosphere(model3d.Origin, 1, 3)
	var first, second []model3d.Triangle
	(&MeshSource{Mesh: mesh}).ForEachTriangle(func(tri Triangle) {
		first = append(first, *tri.Geometry())
	})
	other := &MeshSource{Mesh: model3d.NewMeshIcosphere(model3d.Origin, 1, 3)}
	other.ForEachTriangle(func(tri Triangle) {
		second = append(second, *tri.Geometry())
	})
	if len(first) != len(mesh.TriangleSlice()) || len(first) != len(second) {
		t.Fatalf("unexpected triangle counts %d %d", len(first), len(second))
	}
	for i, tri := range first {
		if tri != second[i] {
			t.Fatalf("triangle %d differs between iterations", i)
		}
		if i > 0 && triangleLess(&tri, &first[i-1]) {
			t.Fatalf("triangle %d out of order", i)
		}
	}
}

func TestAttributedMesh(t *testing.T) {
	mesh := model3d.NewMeshRect(model3d.Origin, model3d.XYZ(1, 2, 3))
	a := NewAttributedMesh(mesh, 5, func(c model3d.Coord3D) []float64 {
		return []float64{c.X + c.Y, c.Z}
	})
	if a.DataDimension() != 5 || a.NumTriangles() != len(mesh.TriangleSlice()) {
		t.Fatalf("unexpected dimension %d or triangle count %d", a.DataDimension(),
			a.NumTriangles())
	}
	if n := len(a.Vertices) / 5; n != 8 {
		t.Errorf("expected 8 shared vertices but got %d", n)
	}
	var count int
	a.ForEachTriangle(func(tri Triangle) {
		count++
		for _, v := range tri {
			if len(v) != 5 || v[3] != v[0]+v[1] || v[4] != v[2] {
				t.Fatalf("unexpected vertex %v", v)
			}
		}
	})
	if count != a.NumTriangles() {
		t.Errorf("visited %d triangles but expected %d", count, a.NumTriangles())
	}
}
