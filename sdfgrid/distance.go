package sdfgrid

import (
	"log"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// A DistanceRasterizer computes a signed distance grid from a closed mesh.
//
// Triangles are fed to an InteriorRasterizer and a SurfaceSampler. When the
// grid is materialized, voxels near the surface are seeded from the sampled
// points, the nearest points are propagated through the grid, and each voxel
// is written with its signed, clamped distance.
type DistanceRasterizer struct {
	bounds *Bounds
	config *Config

	interior *InteriorRasterizer
	sampler  *SurfaceSampler

	numTriangles int
}

// NewDistanceRasterizer creates a rasterizer for the given bounds.
//
// The config is copied, so later changes to it have no effect.
func NewDistanceRasterizer(b *Bounds, c *Config) (*DistanceRasterizer, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "create distance rasterizer")
	}
	config := *c
	return &DistanceRasterizer{
		bounds:   b,
		config:   &config,
		interior: NewInteriorRasterizer(b),
		sampler:  NewSurfaceSampler(b, c.SurfaceVoxelSize, c.DataDimension),
	}, nil
}

// AddTriangle adds a triangle with Config.DataDimension values per vertex.
func (d *DistanceRasterizer) AddTriangle(t Triangle) {
	for _, v := range t {
		if len(v) != d.config.DataDimension {
			panic("triangle does not match data dimension")
		}
	}
	d.numTriangles++
	d.interior.AddTriangle(t.Geometry())
	d.sampler.AddTriangle(t)
}

// Rasterize adds every triangle of src and materializes the grid.
func (d *DistanceRasterizer) Rasterize(src TriangleSource, g Grid, colorizer Colorizer) error {
	if src.DataDimension() != d.config.DataDimension {
		return errors.Wrapf(ErrInvalidConfig, "source has data dimension %d, expected %d",
			src.DataDimension(), d.config.DataDimension)
	}
	src.ForEachTriangle(d.AddTriangle)
	return d.Materialize(g, colorizer)
}

// Materialize computes the distance of every voxel and writes it to g.
//
// The rasterizer cannot accept more triangles afterwards.
//
// If colorizer is non-nil, it is called with the attributes of the nearest
// surface point of each voxel, and its result is stored above the distance
// bits.
func (d *DistanceRasterizer) Materialize(g Grid, colorizer Colorizer) error {
	if !g.Bounds().Equal(d.bounds) {
		return errors.Wrap(ErrBoundsMismatch, "materialize distance grid")
	}
	c := d.config
	threads := c.NumThreads()

	points := d.sampler.Points()
	points.ToGridUnits(d.bounds)
	if c.Verbose {
		log.Printf("sampled %s surface points from %s triangles",
			humanize.Comma(int64(points.Len())), humanize.Comma(int64(d.numTriangles)))
	}

	indices := NewIndexGrid(d.bounds)
	BuildShell(points, indices, c.ShellHalfThickness)
	if c.Verbose {
		log.Printf("shell seeded %s of %s voxels", humanize.Comma(int64(indices.NumSet())),
			humanize.Comma(int64(d.bounds.NumVoxels())))
	}

	maxDist := math.Max(-c.MinDistance, c.MaxDistance) / d.bounds.VoxelSize
	err := Propagate(points, indices, PropagateOptions{
		MaxDistance: maxDist,
		Bounded:     c.UseDistanceRange,
		Threads:     threads,
		Verbose:     c.Verbose,
	})
	if err != nil {
		return errors.Wrap(err, "materialize distance grid")
	}

	mask := d.interior.InteriorMask(threads)
	if c.Verbose {
		log.Printf("%s interior voxels", humanize.Comma(int64(mask.Count())))
	}

	err = Materialize(&MaterializeRequest{
		Points:    points,
		Indices:   indices,
		Interior:  mask,
		Channel:   c.DistanceChannel(),
		Colorizer: colorizer,
		Output:    g,
	}, threads)
	return errors.Wrap(err, "materialize distance grid")
}
