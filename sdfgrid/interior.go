package sdfgrid

import (
	"math"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/exp/slices"
)

// scanEpsilon shifts the x coordinate of every column ray so that rays never
// pass exactly through mesh edges lying on voxel-center lines. Rays that
// still land on an edge (horizontal edges on a row center) are assigned to
// one side by ownsEdge.
const scanEpsilon = 1e-5

// An InteriorRasterizer classifies voxels as inside or outside of a closed
// mesh by counting ray crossings along z.
//
// Open or self-intersecting meshes give locally wrong results; an odd
// crossing count in a column drops its last crossing.
type InteriorRasterizer struct {
	bounds  *Bounds
	columns [][]float64
}

// NewInteriorRasterizer creates an empty rasterizer for the bounds.
func NewInteriorRasterizer(b *Bounds) *InteriorRasterizer {
	return &InteriorRasterizer{
		bounds:  b,
		columns: make([][]float64, b.nx*b.ny),
	}
}

// AddTriangle records the z coordinate where the triangle crosses each
// voxel column under its footprint.
func (i *InteriorRasterizer) AddTriangle(t *model3d.Triangle) {
	b := i.bounds
	p0 := b.WorldToGrid(t[0])
	p1 := b.WorldToGrid(t[1])
	p2 := b.WorldToGrid(t[2])

	// Twice the signed area of the xy projection.
	area := (p1.X-p0.X)*(p2.Y-p0.Y) - (p2.X-p0.X)*(p1.Y-p0.Y)
	if area == 0 {
		return
	} else if area < 0 {
		p1, p2 = p2, p1
		area = -area
	}

	minX := math.Min(p0.X, math.Min(p1.X, p2.X))
	maxX := math.Max(p0.X, math.Max(p1.X, p2.X))
	minY := math.Min(p0.Y, math.Min(p1.Y, p2.Y))
	maxY := math.Max(p0.Y, math.Max(p1.Y, p2.Y))

	x0 := essentials.MaxInt(0, int(math.Ceil(minX-0.5-scanEpsilon)))
	x1 := essentials.MinInt(b.nx-1, int(math.Floor(maxX-0.5-scanEpsilon)))
	y0 := essentials.MaxInt(0, int(math.Ceil(minY-0.5)))
	y1 := essentials.MinInt(b.ny-1, int(math.Floor(maxY-0.5)))

	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		for x := x0; x <= x1; x++ {
			cx := float64(x) + 0.5 + scanEpsilon
			e0 := edgeFunction(p1, p2, cx, cy)
			e1 := edgeFunction(p2, p0, cx, cy)
			e2 := edgeFunction(p0, p1, cx, cy)
			if !edgeCovers(e0, p1, p2) || !edgeCovers(e1, p2, p0) || !edgeCovers(e2, p0, p1) {
				continue
			}
			z := (e0*p0.Z + e1*p1.Z + e2*p2.Z) / area
			idx := x + y*b.nx
			i.columns[idx] = append(i.columns[idx], z)
		}
	}
}

func edgeFunction(a, b model3d.Coord3D, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

// edgeCovers checks if a point with edge function e lies on the inner side
// of the counter-clockwise edge a->b.
//
// Points exactly on the edge belong to it only when ownsEdge does, so two
// triangles sharing an edge never both count the same ray.
func edgeCovers(e float64, a, b model3d.Coord3D) bool {
	if e != 0 {
		return e > 0
	}
	return ownsEdge(a, b)
}

// ownsEdge reports whether the counter-clockwise edge a->b includes the
// points on it. Of the two directions of an edge, exactly one owns it.
func ownsEdge(a, b model3d.Coord3D) bool {
	dy := b.Y - a.Y
	return dy > 0 || (dy == 0 && b.X < a.X)
}

// InteriorMask finalizes the crossings into a mask.
//
// Each column's crossing list is released once it has been consumed, so the
// rasterizer cannot be used after this call.
func (i *InteriorRasterizer) InteriorMask(threads int) *InteriorMask {
	b := i.bounds
	mask := NewInteriorMask(b)
	essentials.StatefulConcurrentMap(resolveThreads(threads), b.ny, func() func(int) {
		var scratch []float64
		return func(y int) {
			for x := 0; x < b.nx; x++ {
				col := i.columns[x+y*b.nx]
				if len(col) < 2 {
					i.columns[x+y*b.nx] = nil
					continue
				}
				scratch = append(scratch[:0], col...)
				i.columns[x+y*b.nx] = nil
				slices.Sort(scratch)
				mask.fillColumn(x, y, scratch[:len(scratch)&^1])
			}
		}
	})
	return mask
}

// InteriorMask is a boolean voxel grid marking voxels inside of a mesh.
type InteriorMask struct {
	bounds *Bounds
	inside []bool
}

func NewInteriorMask(b *Bounds) *InteriorMask {
	return &InteriorMask{
		bounds: b,
		inside: make([]bool, b.NumVoxels()),
	}
}

func (m *InteriorMask) Bounds() *Bounds {
	return m.bounds
}

func (m *InteriorMask) Get(x, y, z int) bool {
	return m.inside[m.bounds.Index(x, y, z)]
}

func (m *InteriorMask) Set(x, y, z int, inside bool) {
	m.inside[m.bounds.Index(x, y, z)] = inside
}

// Count gets the number of interior voxels.
func (m *InteriorMask) Count() int {
	var n int
	for _, x := range m.inside {
		if x {
			n++
		}
	}
	return n
}

// FillGrid writes insideCode to every interior voxel of g, leaving other
// voxels untouched.
func (m *InteriorMask) FillGrid(g Grid, insideCode uint64) {
	nx, ny, nz := m.bounds.Dims()
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if m.Get(x, y, z) {
					g.Set(x, y, z, insideCode)
				}
			}
		}
	}
}

func (m *InteriorMask) fillColumn(x, y int, crossings []float64) {
	nz := m.bounds.nz
	for i := 0; i < len(crossings); i += 2 {
		z0 := essentials.MaxInt(0, int(math.Ceil(crossings[i]-0.5)))
		z1 := essentials.MinInt(nz-1, int(math.Floor(crossings[i+1]-0.5)))
		for z := z0; z <= z1; z++ {
			m.inside[m.bounds.Index(x, y, z)] = true
		}
	}
}
