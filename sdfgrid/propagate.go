package sdfgrid

import (
	"log"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// PropagateOptions configures Propagate.
type PropagateOptions struct {
	// MaxDistance, in grid units, is the distance beyond which voxels are
	// left Unset. If 0, distances are unbounded.
	MaxDistance float64

	// Bounded drops far candidates after every pass rather than only at
	// the end, which is faster when MaxDistance is small compared to the
	// grid. Distances within MaxDistance are unaffected when the points
	// lie at voxel centers.
	Bounded bool

	// Threads is the number of workers. 0 means GOMAXPROCS and 1 runs
	// everything on the calling goroutine.
	Threads int

	Verbose bool
}

// Propagate fills every voxel of grid with the index of its nearest point,
// starting from the seeds written by BuildShell.
//
// The transform is separable: it sweeps lines along x, then y, then z. On
// each line, every voxel takes the point minimizing its distance among the
// points held by voxels of that line, found with a lower envelope of
// parabolas. Ties between two points go to the lower index.
//
// Lines of a pass are independent, so the result does not depend on the
// number of threads. Passes are separated by a barrier.
//
// The points must be in grid units.
func Propagate(points *PointSet, grid *IndexGrid, opts PropagateOptions) error {
	if !points.GridUnits() {
		return errors.New("propagate: points must be in grid units")
	}
	maxDist2 := 0.0
	if opts.MaxDistance > 0 && !math.IsInf(opts.MaxDistance, 1) {
		maxDist2 = opts.MaxDistance * opts.MaxDistance
	}
	threads := resolveThreads(opts.Threads)
	for axis := 0; axis < 3; axis++ {
		pass := newPropagationPass(points, grid, axis, maxDist2, opts.Bounded)
		if err := runSlabs(threads, pass.numSlabs(), pass.runSlab); err != nil {
			return errors.Wrapf(err, "propagate along axis %d", axis)
		}
		if opts.Verbose {
			log.Printf("propagation pass %d: %d/%d voxels set", axis, grid.NumSet(),
				len(grid.Indices))
		}
	}
	return nil
}

type propagationPass struct {
	coords  [3][]float64
	indices []int32

	axis       int
	dims       [3]int
	strides    [3]int
	slabAxis   int
	innerAxis  int
	maxDist2   float64
	truncate   bool
	sweptOther []int
	allOther   []int
}

func newPropagationPass(points *PointSet, grid *IndexGrid, axis int, maxDist2 float64,
	bounded bool) *propagationPass {
	b := grid.bounds
	p := &propagationPass{
		coords:   [3][]float64{points.X, points.Y, points.Z},
		indices:  grid.Indices,
		axis:     axis,
		dims:     [3]int{b.nx, b.ny, b.nz},
		strides:  [3]int{1, b.nx, b.nx * b.ny},
		maxDist2: maxDist2,
	}
	p.truncate = maxDist2 > 0 && (bounded || axis == 2)
	if axis == 2 {
		p.slabAxis, p.innerAxis = 1, 0
	} else {
		p.slabAxis, p.innerAxis = 2, 1-axis
	}
	for other := 0; other < 3; other++ {
		if other == axis {
			continue
		}
		p.allOther = append(p.allOther, other)
		if other < axis {
			p.sweptOther = append(p.sweptOther, other)
		}
	}
	return p
}

func (p *propagationPass) numSlabs() int {
	return p.dims[p.slabAxis]
}

func (p *propagationPass) runSlab(start, end int) error {
	s := &lineScratch{}
	var center [3]float64
	for i := start; i < end; i++ {
		center[p.slabAxis] = float64(i) + 0.5
		for j := 0; j < p.dims[p.innerAxis]; j++ {
			center[p.innerAxis] = float64(j) + 0.5
			offset := i*p.strides[p.slabAxis] + j*p.strides[p.innerAxis]
			p.processLine(offset, &center, s)
		}
	}
	return nil
}

type lineCandidate struct {
	T     float64 // position along the line
	F     float64 // squared distance from the line
	Swept float64 // squared distance along previously swept axes
	Index int32
}

type lineScratch struct {
	cands  []lineCandidate
	hull   []int
	starts []float64
}

func (p *propagationPass) processLine(offset int, center *[3]float64, s *lineScratch) {
	n := p.dims[p.axis]
	stride := p.strides[p.axis]

	s.cands = s.cands[:0]
	last := Unset
	for k := 0; k < n; k++ {
		idx := p.indices[offset+k*stride]
		if idx == Unset || idx == last {
			continue
		}
		last = idx
		c := lineCandidate{T: p.coords[p.axis][idx], Index: idx}
		for _, o := range p.allOther {
			d := p.coords[o][idx] - center[o]
			c.F += d * d
		}
		for _, o := range p.sweptOther {
			d := p.coords[o][idx] - center[o]
			c.Swept += d * d
		}
		if p.truncate && c.Swept > p.maxDist2 {
			continue
		}
		s.cands = append(s.cands, c)
	}

	if len(s.cands) == 0 {
		for k := 0; k < n; k++ {
			p.indices[offset+k*stride] = Unset
		}
		return
	}

	slices.SortFunc(s.cands, func(a, b lineCandidate) bool {
		if a.T != b.T {
			return a.T < b.T
		} else if a.F != b.F {
			return a.F < b.F
		}
		return a.Index < b.Index
	})
	s.lowerEnvelope()

	hull, starts, cands := s.hull, s.starts, s.cands
	h := 0
	for k := 0; k < n; k++ {
		x := float64(k) + 0.5
		for h+1 < len(hull) && starts[h+1] < x {
			h++
		}
		best := cands[hull[h]]
		if h+1 < len(hull) && starts[h+1] == x {
			if next := cands[hull[h+1]]; next.Index < best.Index {
				best = next
			}
		}
		result := best.Index
		if p.truncate {
			// In the final pass, Swept covers both other axes.
			d := x - best.T
			if d*d+best.Swept > p.maxDist2 {
				result = Unset
			}
		}
		p.indices[offset+k*stride] = result
	}
}

// lowerEnvelope computes the parabolas (x-T)^2+F forming the minimum of
// the sorted candidates, and the position at which each one starts.
func (s *lineScratch) lowerEnvelope() {
	s.hull = s.hull[:0]
	s.starts = s.starts[:0]
	for i, c := range s.cands {
		if i > 0 && c.T == s.cands[i-1].T {
			// Same position, but further from the line or higher index.
			continue
		}
		start := math.Inf(-1)
		for len(s.hull) > 0 {
			top := s.cands[s.hull[len(s.hull)-1]]
			start = parabolaIntersection(top, c)
			if start > s.starts[len(s.starts)-1] {
				break
			}
			s.hull = s.hull[:len(s.hull)-1]
			s.starts = s.starts[:len(s.starts)-1]
			start = math.Inf(-1)
		}
		s.hull = append(s.hull, i)
		s.starts = append(s.starts, start)
	}
}

// parabolaIntersection finds where the parabola of c overtakes the parabola
// of prev, assuming prev.T < c.T.
func parabolaIntersection(prev, c lineCandidate) float64 {
	return ((c.F + c.T*c.T) - (prev.F + prev.T*prev.T)) / (2 * (c.T - prev.T))
}
