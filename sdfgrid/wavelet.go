package sdfgrid

import (
	"math/bits"

	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
)

// A WaveletRasterizer computes an antialiased density grid for a closed
// mesh by integrating Haar wavelets over an octree.
//
// Every node stores the seven wavelet coefficients of the mesh's indicator
// function within its cell, computed from surface integrals of the
// triangles inside the cell. Reconstruction yields the exact fraction of
// each voxel covered by the solid.
//
// The mesh should lie within the bounds; triangles are clipped to the root
// cell.
type WaveletRasterizer struct {
	bounds  *Bounds
	channel *DensityChannel

	depth    int
	rootSize int

	// volume is the root scaling coefficient: the fraction of the root
	// cell covered by the solid.
	volume float64
	nodes  []waveletNode

	scratch []octantScratch
	clipped []model3d.Triangle
}

type waveletNode struct {
	coeffs    [7]float64
	children  [8]int32
	childMask uint8
}

// NewWaveletRasterizer creates a rasterizer writing densities with the given
// number of bits.
//
// The octree has depth ceil(log2(max(nx, ny, nz))), so the cells of its
// deepest octants are single voxels.
func NewWaveletRasterizer(b *Bounds, densityBits int) (*WaveletRasterizer, error) {
	if densityBits < 1 || densityBits > 63 {
		return nil, errors.Wrapf(ErrInvalidConfig, "density bits %d", densityBits)
	}
	nx, ny, nz := b.Dims()
	maxDim := essentials.MaxInt(nx, essentials.MaxInt(ny, nz))
	depth := bits.Len(uint(maxDim - 1))
	return &WaveletRasterizer{
		bounds:   b,
		channel:  &DensityChannel{Bits: densityBits},
		depth:    depth,
		rootSize: 1 << uint(depth),
		nodes:    []waveletNode{{}},
		scratch:  make([]octantScratch, depth),
	}, nil
}

// Depth gets the number of octree levels holding coefficients.
func (w *WaveletRasterizer) Depth() int {
	return w.depth
}

// NumNodes gets the number of allocated octree nodes.
func (w *WaveletRasterizer) NumNodes() int {
	return len(w.nodes)
}

// Volume gets the solid's volume in world units, as measured so far.
func (w *WaveletRasterizer) Volume() float64 {
	s := float64(w.rootSize) * w.bounds.VoxelSize
	return w.volume * s * s * s
}

// AddTriangle adds the contribution of a triangle to the octree.
func (w *WaveletRasterizer) AddTriangle(t *model3d.Triangle) {
	scale := 1 / float64(w.rootSize)
	var local model3d.Triangle
	for i, c := range t {
		local[i] = w.bounds.WorldToGrid(c).Scale(scale)
	}
	if triangleAreaVector(local) == (model3d.Coord3D{}) {
		return
	}
	w.clipped = clipTriangleBox(local, model3d.Coord3D{}, model3d.XYZ(1, 1, 1), w.clipped[:0])
	for _, piece := range w.clipped {
		area := triangleAreaVector(piece)
		w.volume += area.X * (piece[0].X + piece[1].X + piece[2].X) / 3
		w.addToNode(0, piece, 0)
	}
}

// addToNode accumulates the coefficients of a triangle, given in the local
// coordinates of the node's cell, and recurses into the octants it touches.
func (w *WaveletRasterizer) addToNode(node int32, t model3d.Triangle, depth int) {
	s := &w.scratch[depth]
	s.split(t)
	for q, pieces := range s.octants {
		for _, p := range pieces {
			w.nodes[node].accumulate(q, p)
		}
	}
	if depth+1 >= w.depth {
		return
	}
	for q, pieces := range s.octants {
		if len(pieces) == 0 {
			continue
		}
		child := w.child(node, q)
		offset := octantOffset(q).Scale(0.5)
		for _, p := range pieces {
			var local model3d.Triangle
			for i, c := range p {
				local[i] = c.Sub(offset).Scale(2)
			}
			w.addToNode(child, local, depth+1)
		}
	}
}

func (w *WaveletRasterizer) child(node int32, q int) int32 {
	n := &w.nodes[node]
	if n.childMask&(1<<uint(q)) != 0 {
		return n.children[q]
	}
	idx := int32(len(w.nodes))
	n.children[q] = idx
	n.childMask |= 1 << uint(q)
	w.nodes = append(w.nodes, waveletNode{})
	return idx
}

// accumulate adds the flux of the triangle, lying in octant q of the cell,
// to each wavelet coefficient.
//
// For wavelet e, the flux is taken through a field along the lowest axis a
// set in e, whose a-component is a tent function of u_a (zero on the cell
// faces) times the Haar signs of the other axes in e. Its divergence is the
// wavelet, and it contributes nothing on the cell boundary.
func (n *waveletNode) accumulate(q int, t model3d.Triangle) {
	area := triangleAreaVector(t).Array()
	centroid := t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3).Array()
	for e := 1; e < 8; e++ {
		a := bits.TrailingZeros(uint(e))
		if area[a] == 0 {
			continue
		}
		h := centroid[a]
		if q&(1<<uint(a)) != 0 {
			h = 1 - h
		}
		for i := a + 1; i < 3; i++ {
			if e&(1<<uint(i)) != 0 && q&(1<<uint(i)) != 0 {
				h = -h
			}
		}
		n.coeffs[e-1] += area[a] * h
	}
}

// octantAverage reconstructs the mean density of octant q from the mean of
// the cell and its wavelet coefficients.
func (n *waveletNode) octantAverage(avg float64, q int) float64 {
	for e := 1; e < 8; e++ {
		if bits.OnesCount(uint(e&q))%2 == 1 {
			avg -= n.coeffs[e-1]
		} else {
			avg += n.coeffs[e-1]
		}
	}
	return avg
}

func triangleAreaVector(t model3d.Triangle) model3d.Coord3D {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Scale(0.5)
}

func octantOffset(q int) model3d.Coord3D {
	return model3d.XYZ(float64(q&1), float64((q>>1)&1), float64((q>>2)&1))
}

// Materialize writes the quantized density of every voxel into the grid.
//
// Octants without a child node are uniform and are filled with a constant.
// Disjoint subtrees are written concurrently; g must support concurrent
// Set calls on distinct voxels.
func (w *WaveletRasterizer) Materialize(g Grid, threads int) error {
	if !g.Bounds().Equal(w.bounds) {
		return errors.Wrap(ErrBoundsMismatch, "materialize wavelet grid")
	}
	var queue *forkQueue[int]
	if threads = resolveThreads(threads); threads > 1 {
		queue = newForkQueue[int](threads)
	}
	written := queue.Run(func() int {
		return w.materializeNode(queue, g, 0, [3]int{}, w.rootSize, w.volume)
	})
	if written != w.bounds.NumVoxels() {
		return errors.Errorf("materialize wavelet grid: wrote %d of %d voxels", written,
			w.bounds.NumVoxels())
	}
	return nil
}

func (w *WaveletRasterizer) materializeNode(queue *forkQueue[int], g Grid, node int32,
	origin [3]int, size int, avg float64) int {
	return queue.ForkRange(0, 8, func(q int) int {
		return w.materializeOctant(queue, g, node, origin, size, avg, q)
	}, addInts)
}

func (w *WaveletRasterizer) materializeOctant(queue *forkQueue[int], g Grid, node int32,
	origin [3]int, size int, avg float64, q int) int {
	n := &w.nodes[node]
	half := size / 2
	o := [3]int{
		origin[0] + (q&1)*half,
		origin[1] + ((q>>1)&1)*half,
		origin[2] + ((q>>2)&1)*half,
	}
	nx, ny, nz := w.bounds.Dims()
	if o[0] >= nx || o[1] >= ny || o[2] >= nz {
		return 0
	}
	value := n.octantAverage(avg, q)
	if n.childMask&(1<<uint(q)) != 0 && half > 1 {
		return w.materializeNode(queue, g, n.children[q], o, half, value)
	}
	code := w.channel.Encode(value)
	x1 := essentials.MinInt(nx, o[0]+half)
	y1 := essentials.MinInt(ny, o[1]+half)
	z1 := essentials.MinInt(nz, o[2]+half)
	for z := o[2]; z < z1; z++ {
		for y := o[1]; y < y1; y++ {
			for x := o[0]; x < x1; x++ {
				g.Set(x, y, z, code)
			}
		}
	}
	return (x1 - o[0]) * (y1 - o[1]) * (z1 - o[2])
}

func addInts(a, b int) int {
	return a + b
}

// octantScratch holds the pieces of a triangle split at a cell's center.
type octantScratch struct {
	halves   [2][]model3d.Triangle
	quarters [2][]model3d.Triangle
	octants  [8][]model3d.Triangle
}

// split divides t, in cell-local coordinates, across the three planes
// bisecting the cell. Octant q holds the pieces on the high side of axis i
// when bit i of q is set.
func (s *octantScratch) split(t model3d.Triangle) {
	for i := range s.octants {
		s.octants[i] = s.octants[i][:0]
	}
	s.halves[0], s.halves[1] = splitTriangleAxis(t, 0, 0.5, s.halves[0][:0], s.halves[1][:0])
	for qx := 0; qx < 2; qx++ {
		s.quarters[0], s.quarters[1] = s.quarters[0][:0], s.quarters[1][:0]
		for _, p := range s.halves[qx] {
			s.quarters[0], s.quarters[1] = splitTriangleAxis(p, 1, 0.5, s.quarters[0], s.quarters[1])
		}
		for qy := 0; qy < 2; qy++ {
			lo := qx | qy<<1
			hi := lo | 4
			for _, p := range s.quarters[qy] {
				s.octants[lo], s.octants[hi] = splitTriangleAxis(p, 2, 0.5, s.octants[lo],
					s.octants[hi])
			}
		}
	}
}
