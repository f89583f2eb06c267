package sdfgrid

import (
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/exp/slices"
)

// Data dimensions understood by the rasterizers.
const (
	DataDimensionGeometry     = 3
	DataDimensionTexture      = 5
	DataDimensionTextureIndex = 6
)

// A Triangle holds three vertices, each with DataDimension values.
// The first three values of a vertex are its world-space position, and
// any remaining values are per-vertex attributes.
type Triangle [3][]float64

// Geometry gets the triangle's positions.
func (t Triangle) Geometry() *model3d.Triangle {
	return &model3d.Triangle{vertexCoord(t[0]), vertexCoord(t[1]), vertexCoord(t[2])}
}

func vertexCoord(v []float64) model3d.Coord3D {
	return model3d.XYZ(v[0], v[1], v[2])
}

// A TriangleSource is a stream of triangles that the rasterizers pull from.
type TriangleSource interface {
	// DataDimension is the number of values per vertex.
	DataDimension() int

	// ForEachTriangle calls f for every triangle, in a fixed order.
	// The triangle may be reused after f returns.
	ForEachTriangle(f func(t Triangle))
}

// A Colorizer maps the attributes of a surface sample to the auxiliary
// channel bits of an output voxel.
//
// Colorizers are called concurrently and must not have side effects.
type Colorizer func(attrs []float64) uint64

// MeshSource adapts a model3d mesh into a geometry-only TriangleSource.
//
// Triangles are visited in a canonical order, so that rasterizing the same
// mesh twice produces identical grids.
type MeshSource struct {
	Mesh *model3d.Mesh

	sorted []*model3d.Triangle
}

func (m *MeshSource) DataDimension() int {
	return DataDimensionGeometry
}

func (m *MeshSource) ForEachTriangle(f func(t Triangle)) {
	var buf [9]float64
	t := Triangle{buf[0:3], buf[3:6], buf[6:9]}
	if m.sorted == nil {
		m.sorted = m.Mesh.TriangleSlice()
		slices.SortFunc(m.sorted, triangleLess)
	}
	for _, tri := range m.sorted {
		for i, c := range tri {
			t[i][0], t[i][1], t[i][2] = c.X, c.Y, c.Z
		}
		f(t)
	}
}

func triangleLess(t1, t2 *model3d.Triangle) bool {
	for i := 0; i < 3; i++ {
		a1, a2 := t1[i].Array(), t2[i].Array()
		for j := 0; j < 3; j++ {
			if a1[j] != a2[j] {
				return a1[j] < a2[j]
			}
		}
	}
	return false
}

// AttributedMesh is an indexed mesh whose vertices carry attributes.
type AttributedMesh struct {
	// Dimension is the number of values per vertex.
	Dimension int

	// Vertices is a packed array of Dimension values per vertex.
	Vertices []float64

	// Faces lists vertex indices, three per triangle.
	Faces []int
}

// NewAttributedMesh creates an AttributedMesh from a model3d mesh, calling
// attrs to compute the extra values for each vertex.
//
// Faces are emitted in the same canonical order as MeshSource.
func NewAttributedMesh(m *model3d.Mesh, dimension int,
	attrs func(c model3d.Coord3D) []float64) *AttributedMesh {
	res := &AttributedMesh{Dimension: dimension}
	indices := map[model3d.Coord3D]int{}
	tris := m.TriangleSlice()
	slices.SortFunc(tris, triangleLess)
	for _, t := range tris {
		for _, c := range t {
			idx, ok := indices[c]
			if !ok {
				idx = len(res.Vertices) / dimension
				indices[c] = idx
				res.Vertices = append(res.Vertices, c.X, c.Y, c.Z)
				extra := attrs(c)
				if len(extra) != dimension-3 {
					panic("attribute count does not match dimension")
				}
				res.Vertices = append(res.Vertices, extra...)
			}
			res.Faces = append(res.Faces, idx)
		}
	}
	return res
}

func (a *AttributedMesh) DataDimension() int {
	return a.Dimension
}

func (a *AttributedMesh) NumTriangles() int {
	return len(a.Faces) / 3
}

func (a *AttributedMesh) ForEachTriangle(f func(t Triangle)) {
	d := a.Dimension
	for i := 0; i+2 < len(a.Faces); i += 3 {
		var t Triangle
		for j := 0; j < 3; j++ {
			v := a.Faces[i+j]
			t[j] = a.Vertices[v*d : (v+1)*d]
		}
		f(t)
	}
}
