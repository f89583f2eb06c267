package sdfgrid

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

var (
	ErrInvalidBounds  = errors.New("invalid grid bounds")
	ErrLowResolution  = errors.New("grid resolution too low")
	ErrBoundsMismatch = errors.New("grid bounds do not match rasterizer bounds")
)

// Bounds is an axis-aligned box divided into cubic voxels.
//
// Voxel (i, j, k) covers [i, i+1) x [j, j+1) x [k, k+1) in grid units,
// where grid units measure distance from Min in multiples of VoxelSize.
type Bounds struct {
	Min       model3d.Coord3D
	Max       model3d.Coord3D
	VoxelSize float64

	nx, ny, nz int
}

// NewBounds creates grid bounds, checking that the box is not degenerate and
// that every axis spans at least two voxels.
func NewBounds(min, max model3d.Coord3D, voxelSize float64) (*Bounds, error) {
	if !(voxelSize > 0) {
		return nil, errors.Wrapf(ErrInvalidBounds, "voxel size %f", voxelSize)
	}
	size := max.Sub(min)
	for axis, extent := range size.Array() {
		if !(extent > 0) {
			return nil, errors.Wrapf(ErrInvalidBounds, "extent %f along axis %d", extent, axis)
		}
	}
	b := &Bounds{
		Min:       min,
		Max:       max,
		VoxelSize: voxelSize,
		nx:        gridDim(size.X, voxelSize),
		ny:        gridDim(size.Y, voxelSize),
		nz:        gridDim(size.Z, voxelSize),
	}
	if b.nx < 2 || b.ny < 2 || b.nz < 2 {
		return nil, errors.Wrapf(ErrLowResolution, "grid size %dx%dx%d", b.nx, b.ny, b.nz)
	}
	return b, nil
}

// NewBoundsMesh creates bounds around a mesh, expanded by margin on every
// side.
func NewBoundsMesh(m *model3d.Mesh, margin, voxelSize float64) (*Bounds, error) {
	return NewBounds(m.Min().AddScalar(-margin), m.Max().AddScalar(margin), voxelSize)
}

func gridDim(extent, voxelSize float64) int {
	n := extent / voxelSize
	return int(math.Ceil(n - n*1e-8))
}

// Dims returns the number of voxels along each axis.
func (b *Bounds) Dims() (nx, ny, nz int) {
	return b.nx, b.ny, b.nz
}

// NumVoxels returns nx*ny*nz.
func (b *Bounds) NumVoxels() int {
	return b.nx * b.ny * b.nz
}

// Index gets the flat offset of a voxel, with x varying fastest.
func (b *Bounds) Index(x, y, z int) int {
	return x + b.nx*(y+b.ny*z)
}

// InBounds checks if a voxel coordinate lies in the grid.
func (b *Bounds) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < b.nx && y < b.ny && z < b.nz
}

// WorldToGrid maps a world coordinate into grid units.
func (b *Bounds) WorldToGrid(c model3d.Coord3D) model3d.Coord3D {
	return c.Sub(b.Min).Scale(1 / b.VoxelSize)
}

// GridToWorld is the inverse of WorldToGrid.
func (b *Bounds) GridToWorld(c model3d.Coord3D) model3d.Coord3D {
	return c.Scale(b.VoxelSize).Add(b.Min)
}

// VoxelCenter gets the world coordinate of the center of a voxel.
func (b *Bounds) VoxelCenter(x, y, z int) model3d.Coord3D {
	return b.GridToWorld(model3d.XYZ(float64(x)+0.5, float64(y)+0.5, float64(z)+0.5))
}

// VoxelAt gets the voxel containing a world coordinate. The result may be
// out of bounds.
func (b *Bounds) VoxelAt(c model3d.Coord3D) (x, y, z int) {
	g := b.WorldToGrid(c)
	return int(math.Floor(g.X)), int(math.Floor(g.Y)), int(math.Floor(g.Z))
}

// Equal checks if two bounds describe the same grid.
func (b *Bounds) Equal(other *Bounds) bool {
	return b.Min == other.Min && b.Max == other.Max && b.VoxelSize == other.VoxelSize
}
