package sdfgrid

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
)

// A PointSet stores surface samples as parallel coordinate arrays, plus one
// array per attribute channel.
//
// Coordinates are either in world units or in grid units, depending on the
// most recent call to ToGridUnits or ToWorldUnits.
type PointSet struct {
	X, Y, Z []float64
	Attrs   [][]float64

	gridUnits bool
}

// NewPointSet creates an empty point set with the given number of attribute
// channels.
func NewPointSet(numAttrs int) *PointSet {
	return &PointSet{Attrs: make([][]float64, numAttrs)}
}

func (p *PointSet) Len() int {
	return len(p.X)
}

// NumAttrs gets the number of attribute channels.
func (p *PointSet) NumAttrs() int {
	return len(p.Attrs)
}

// Add appends a point and its attributes.
func (p *PointSet) Add(c model3d.Coord3D, attrs []float64) {
	if len(attrs) != len(p.Attrs) {
		panic("attribute count mismatch")
	}
	p.X = append(p.X, c.X)
	p.Y = append(p.Y, c.Y)
	p.Z = append(p.Z, c.Z)
	for i, a := range attrs {
		p.Attrs[i] = append(p.Attrs[i], a)
	}
}

// Coord gets the i-th point.
func (p *PointSet) Coord(i int) model3d.Coord3D {
	return model3d.XYZ(p.X[i], p.Y[i], p.Z[i])
}

// Attributes copies the attributes of the i-th point into out, which is
// grown if necessary.
func (p *PointSet) Attributes(i int, out []float64) []float64 {
	out = out[:0]
	for _, ch := range p.Attrs {
		out = append(out, ch[i])
	}
	return out
}

// GridUnits reports whether the coordinates are currently in grid units.
func (p *PointSet) GridUnits() bool {
	return p.gridUnits
}

// ToGridUnits converts the coordinates in place from world units to grid
// units. It is a no-op if they already are in grid units.
func (p *PointSet) ToGridUnits(b *Bounds) {
	if p.gridUnits {
		return
	}
	p.gridUnits = true
	s := 1 / b.VoxelSize
	convertAxis(p.X, -b.Min.X, s)
	convertAxis(p.Y, -b.Min.Y, s)
	convertAxis(p.Z, -b.Min.Z, s)
}

// ToWorldUnits undoes ToGridUnits.
func (p *PointSet) ToWorldUnits(b *Bounds) {
	if !p.gridUnits {
		return
	}
	p.gridUnits = false
	s := b.VoxelSize
	for i := range p.X {
		p.X[i] = p.X[i]*s + b.Min.X
		p.Y[i] = p.Y[i]*s + b.Min.Y
		p.Z[i] = p.Z[i]*s + b.Min.Z
	}
}

func convertAxis(values []float64, offset, scale float64) {
	for i, x := range values {
		values[i] = (x + offset) * scale
	}
}

// A SurfaceSampler turns triangles into a dense cloud of points lying on the
// surface, optionally interpolating per-vertex attributes.
type SurfaceSampler struct {
	bounds    *Bounds
	spacing   float64
	dimension int

	points *PointSet
	frozen bool

	attrBuf []float64
}

// NewSurfaceSampler creates a sampler whose point spacing is
// surfaceVoxelSize grid voxels.
func NewSurfaceSampler(b *Bounds, surfaceVoxelSize float64, dimension int) *SurfaceSampler {
	if dimension < 3 {
		panic("data dimension must be at least 3")
	}
	return &SurfaceSampler{
		bounds:    b,
		spacing:   surfaceVoxelSize * b.VoxelSize,
		dimension: dimension,
		points:    NewPointSet(dimension - 3),
		attrBuf:   make([]float64, dimension-3),
	}
}

// AddTriangle splits t into n*n congruent sub-triangles, where n is chosen
// so that no edge is longer than the sample spacing, and adds a point at
// the centroid of each.
func (s *SurfaceSampler) AddTriangle(t Triangle) {
	if s.frozen {
		panic("cannot add triangles after points have been retrieved")
	}
	a, b, c := vertexCoord(t[0]), vertexCoord(t[1]), vertexCoord(t[2])
	ab := b.Sub(a)
	ac := c.Sub(a)
	if ab.Cross(ac).Norm() == 0 {
		return
	}
	maxEdge := math.Max(ab.Norm(), math.Max(ac.Norm(), c.Dist(b)))
	n := int(math.Ceil(maxEdge / s.spacing))
	if n < 1 {
		n = 1
	}
	scale := 1 / float64(n)
	for i := 0; i < n; i++ {
		for j := 0; i+j < n; j++ {
			s.addSample(t, a, ab, ac, (float64(i)+1.0/3)*scale, (float64(j)+1.0/3)*scale)
			if i+j < n-1 {
				s.addSample(t, a, ab, ac, (float64(i)+2.0/3)*scale, (float64(j)+2.0/3)*scale)
			}
		}
	}
}

func (s *SurfaceSampler) addSample(t Triangle, a, ab, ac model3d.Coord3D, u, v float64) {
	point := a.Add(ab.Scale(u)).Add(ac.Scale(v))
	if s.dimension == DataDimensionGeometry {
		s.points.Add(point, nil)
		return
	}
	weights := [3]float64{1 - u - v, u, v}
	for k := range s.attrBuf {
		d := 3 + k
		if s.dimension == DataDimensionTextureIndex && d == DataDimensionTextureIndex-1 {
			// Texture indices are discrete, so use the dominant vertex.
			s.attrBuf[k] = t[dominantVertex(weights)][d]
			continue
		}
		s.attrBuf[k] = weights[0]*t[0][d] + weights[1]*t[1][d] + weights[2]*t[2][d]
	}
	s.points.Add(point, s.attrBuf)
}

func dominantVertex(w [3]float64) int {
	best := 0
	for i := 1; i < 3; i++ {
		if w[i] > w[best] {
			best = i
		}
	}
	return best
}

// PointCount gets the number of points sampled so far.
func (s *SurfaceSampler) PointCount() int {
	return s.points.Len()
}

// Points freezes the sampler and returns the sampled points in world units.
func (s *SurfaceSampler) Points() *PointSet {
	s.frozen = true
	return s.points
}
