package sdfgrid

import (
	"math"

	"github.com/pkg/errors"
)

// A MaterializeRequest gathers the inputs of Materialize.
type MaterializeRequest struct {
	// Points must be in grid units.
	Points   *PointSet
	Indices  *IndexGrid
	Interior *InteriorMask
	Channel  *DistanceChannel

	// Colorizer, if non-nil, computes auxiliary bits from the attributes
	// of each voxel's nearest point. These bits are stored above
	// Channel.Bits.
	Colorizer Colorizer

	Output Grid
}

// Materialize writes the signed distance of every voxel into the output
// grid.
//
// Interior voxels get -min(d, -MinDistance) and exterior voxels get
// min(d, MaxDistance), where d is the world-space distance to the voxel's
// nearest point. Voxels without a nearest point get MinDistance inside and
// MaxDistance outside.
//
// Work is split into z slabs; the output does not depend on threads.
func Materialize(req *MaterializeRequest, threads int) error {
	b := req.Output.Bounds()
	if !b.Equal(req.Indices.Bounds()) || !b.Equal(req.Interior.Bounds()) {
		return errors.Wrap(ErrBoundsMismatch, "materialize")
	}
	if !req.Points.GridUnits() {
		return errors.New("materialize: points must be in grid units")
	}
	ch := req.Channel
	if req.Colorizer != nil && ch.Bits >= 64 {
		return errors.New("materialize: no bits left for attributes")
	}
	insideCode := ch.Encode(ch.MinDistance)
	outsideCode := ch.Encode(ch.MaxDistance)

	err := runSlabs(resolveThreads(threads), b.nz, func(start, end int) error {
		var attrs []float64
		for z := start; z < end; z++ {
			cz := float64(z) + 0.5
			for y := 0; y < b.ny; y++ {
				cy := float64(y) + 0.5
				for x := 0; x < b.nx; x++ {
					offset := b.Index(x, y, z)
					inside := req.Interior.inside[offset]
					idx := req.Indices.Indices[offset]
					if idx == Unset {
						if inside {
							req.Output.Set(x, y, z, insideCode)
						} else {
							req.Output.Set(x, y, z, outsideCode)
						}
						continue
					}
					p := req.Points
					dx := p.X[idx] - (float64(x) + 0.5)
					dy := p.Y[idx] - cy
					dz := p.Z[idx] - cz
					dist := math.Sqrt(dx*dx+dy*dy+dz*dz) * b.VoxelSize
					if inside {
						dist = -math.Min(dist, -ch.MinDistance)
					} else {
						dist = math.Min(dist, ch.MaxDistance)
					}
					code := ch.Encode(dist)
					if req.Colorizer != nil {
						attrs = p.Attributes(int(idx), attrs)
						code |= req.Colorizer(attrs) << uint(ch.Bits)
					}
					req.Output.Set(x, y, z, code)
				}
			}
		}
		return nil
	})
	return errors.Wrap(err, "materialize")
}
