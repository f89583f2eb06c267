package sdfgrid

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/exp/constraints"
)

// GridSolid creates a solid from a signed distance grid, containing the
// points where the trilinearly interpolated distance is negative.
func GridSolid(g Grid, ch *DistanceChannel) model3d.Solid {
	b := g.Bounds()
	return model3d.CheckedFuncSolid(b.Min, b.Max, func(c model3d.Coord3D) bool {
		return Interpolate(g, c, ch.Decode) < 0
	})
}

// DensitySolid creates a solid from a density grid, containing the points
// where the trilinearly interpolated density exceeds one half.
func DensitySolid(g Grid, ch *DensityChannel) model3d.Solid {
	b := g.Bounds()
	return model3d.CheckedFuncSolid(b.Min, b.Max, func(c model3d.Coord3D) bool {
		return Interpolate(g, c, ch.Decode) > 0.5
	})
}

// Interpolate decodes the voxels around a world-space point and blends them
// trilinearly, treating each value as located at its voxel's center.
//
// Points outside of the voxel centers take the value of the nearest voxel
// along each axis.
func Interpolate(g Grid, c model3d.Coord3D, decode func(uint64) float64) float64 {
	b := g.Bounds()
	p := b.WorldToGrid(c).AddScalar(-0.5).Array()
	dims := [3]int{b.nx, b.ny, b.nz}
	var lo, hi [3]int
	var frac [3]float64
	for i := 0; i < 3; i++ {
		f := math.Floor(p[i])
		lo[i] = clamp(int(f), 0, dims[i]-1)
		hi[i] = clamp(int(f)+1, 0, dims[i]-1)
		frac[i] = clamp(p[i]-f, 0, 1)
		if p[i] < 0 {
			frac[i] = 0
		}
	}
	var result float64
	for corner := 0; corner < 8; corner++ {
		weight := 1.0
		var idx [3]int
		for i := 0; i < 3; i++ {
			if corner&(1<<uint(i)) != 0 {
				idx[i] = hi[i]
				weight *= frac[i]
			} else {
				idx[i] = lo[i]
				weight *= 1 - frac[i]
			}
		}
		if weight == 0 {
			continue
		}
		result += weight * decode(g.Get(idx[0], idx[1], idx[2]))
	}
	return result
}

func clamp[T constraints.Ordered](x, min, max T) T {
	if x < min {
		return min
	} else if x > max {
		return max
	}
	return x
}
