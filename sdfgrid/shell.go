package sdfgrid

import (
	"math"

	"github.com/unixpickle/essentials"
)

// Unset marks an IndexGrid voxel with no known nearest point.
const Unset int32 = -1

// An IndexGrid stores, for each voxel, the index of its nearest surface
// point in a PointSet, or Unset.
type IndexGrid struct {
	bounds  *Bounds
	Indices []int32
}

// NewIndexGrid creates an IndexGrid with every voxel Unset.
func NewIndexGrid(b *Bounds) *IndexGrid {
	res := &IndexGrid{
		bounds:  b,
		Indices: make([]int32, b.NumVoxels()),
	}
	for i := range res.Indices {
		res.Indices[i] = Unset
	}
	return res
}

func (g *IndexGrid) Bounds() *Bounds {
	return g.bounds
}

func (g *IndexGrid) Get(x, y, z int) int32 {
	return g.Indices[g.bounds.Index(x, y, z)]
}

func (g *IndexGrid) Set(x, y, z int, idx int32) {
	g.Indices[g.bounds.Index(x, y, z)] = idx
}

// NumSet counts the voxels which are not Unset.
func (g *IndexGrid) NumSet() int {
	var n int
	for _, x := range g.Indices {
		if x != Unset {
			n++
		}
	}
	return n
}

// BuildShell seeds the voxels near each point with the index of their
// nearest point.
//
// A voxel is near a point if its center is within halfThickness voxels of
// the point, or if it contains the point. All other voxels are left as they
// were. When several points are equally near, the lowest index wins.
//
// The points must be in grid units.
func BuildShell(points *PointSet, grid *IndexGrid, halfThickness float64) {
	if !points.GridUnits() {
		panic("points must be in grid units")
	}
	if points.Len() > math.MaxInt32 {
		panic("too many points for index grid")
	}
	b := grid.bounds
	r := halfThickness
	r2 := r * r
	dists := make([]float64, len(grid.Indices))
	for i := range dists {
		dists[i] = math.Inf(1)
	}
	for i := 0; i < points.Len(); i++ {
		px, py, pz := points.X[i], points.Y[i], points.Z[i]
		cx, cy, cz := int(math.Floor(px)), int(math.Floor(py)), int(math.Floor(pz))
		x0, x1 := bandRange(px, r, cx, b.nx)
		y0, y1 := bandRange(py, r, cy, b.ny)
		z0, z1 := bandRange(pz, r, cz, b.nz)
		for z := z0; z <= z1; z++ {
			dz := float64(z) + 0.5 - pz
			for y := y0; y <= y1; y++ {
				dy := float64(y) + 0.5 - py
				for x := x0; x <= x1; x++ {
					dx := float64(x) + 0.5 - px
					d2 := dx*dx + dy*dy + dz*dz
					if d2 > r2 && !(x == cx && y == cy && z == cz) {
						continue
					}
					idx := b.Index(x, y, z)
					if d2 < dists[idx] {
						dists[idx] = d2
						grid.Indices[idx] = int32(i)
					}
				}
			}
		}
	}
}

func bandRange(p, r float64, containing, n int) (int, int) {
	lo := essentials.MinInt(int(math.Ceil(p-r-0.5)), containing)
	hi := essentials.MaxInt(int(math.Floor(p+r-0.5)), containing)
	return essentials.MaxInt(0, lo), essentials.MinInt(n-1, hi)
}
