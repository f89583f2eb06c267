package sdfgrid

import "math"

// A Grid is a 3D voxel store holding one integer attribute code per cell.
//
// The meaning of a code (density, signed distance, material) is decided by
// the caller, usually through a DistanceChannel or DensityChannel.
type Grid interface {
	Bounds() *Bounds
	Get(x, y, z int) uint64
	Set(x, y, z int, value uint64)
}

// ArrayGrid is a dense Grid stored as a flat array with x varying fastest.
//
// Set may be called concurrently for distinct voxels.
type ArrayGrid struct {
	bounds *Bounds
	Values []uint64
}

// NewArrayGrid creates a zero-filled grid for the bounds.
func NewArrayGrid(b *Bounds) *ArrayGrid {
	return &ArrayGrid{
		bounds: b,
		Values: make([]uint64, b.NumVoxels()),
	}
}

func (a *ArrayGrid) Bounds() *Bounds {
	return a.bounds
}

func (a *ArrayGrid) Get(x, y, z int) uint64 {
	return a.Values[a.bounds.Index(x, y, z)]
}

func (a *ArrayGrid) Set(x, y, z int, value uint64) {
	a.Values[a.bounds.Index(x, y, z)] = value
}

// Fill sets every voxel to the same code.
func (a *ArrayGrid) Fill(value uint64) {
	for i := range a.Values {
		a.Values[i] = value
	}
}

// Equal checks if two grids have the same bounds and contents.
func (a *ArrayGrid) Equal(other *ArrayGrid) bool {
	if !a.bounds.Equal(other.bounds) || len(a.Values) != len(other.Values) {
		return false
	}
	for i, x := range a.Values {
		if other.Values[i] != x {
			return false
		}
	}
	return true
}

// A DistanceChannel quantizes signed distances in world units into the low
// Bits of a voxel code.
//
// Code 0 corresponds to MinDistance and the maximum code to MaxDistance.
type DistanceChannel struct {
	MinDistance float64
	MaxDistance float64
	Bits        int
}

// MaxCode gets the largest code the channel produces.
func (d *DistanceChannel) MaxCode() uint64 {
	return maxCode(d.Bits)
}

// Encode quantizes a distance, clamping it to the channel range.
func (d *DistanceChannel) Encode(dist float64) uint64 {
	frac := (dist - d.MinDistance) / (d.MaxDistance - d.MinDistance)
	return quantize(frac, d.MaxCode())
}

// Decode recovers the distance represented by the low bits of a code.
func (d *DistanceChannel) Decode(code uint64) float64 {
	m := d.MaxCode()
	frac := float64(code&m) / float64(m)
	return d.MinDistance + frac*(d.MaxDistance-d.MinDistance)
}

// Attribute extracts the bits stored above the distance.
func (d *DistanceChannel) Attribute(code uint64) uint64 {
	return code >> uint(d.Bits)
}

// A DensityChannel quantizes densities in [0, 1].
type DensityChannel struct {
	Bits int
}

func (d *DensityChannel) MaxCode() uint64 {
	return maxCode(d.Bits)
}

// Encode clamps the density to [0, 1] and quantizes it.
func (d *DensityChannel) Encode(density float64) uint64 {
	return quantize(density, d.MaxCode())
}

func (d *DensityChannel) Decode(code uint64) float64 {
	return float64(code) / float64(d.MaxCode())
}

func maxCode(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << uint(bits)) - 1
}

func quantize(frac float64, max uint64) uint64 {
	if !(frac > 0) {
		return 0
	} else if frac >= 1 {
		return max
	}
	return uint64(math.Round(frac * float64(max)))
}
