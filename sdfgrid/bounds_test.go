package sdfgrid

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

func TestNewBounds(t *testing.T) {
	b, err := NewBounds(model3d.XYZ(-1, 0, 0), model3d.XYZ(1, 0.5, 0.3), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	nx, ny, nz := b.Dims()
	if nx != 20 || ny != 5 || nz != 3 {
		t.Fatalf("unexpected dims %dx%dx%d", nx, ny, nz)
	}
	if b.NumVoxels() != 300 {
		t.Errorf("unexpected voxel count %d", b.NumVoxels())
	}
	if b.Index(1, 2, 1) != 1+20*(2+5*1) {
		t.Errorf("unexpected index %d", b.Index(1, 2, 1))
	}

	c := b.VoxelCenter(3, 1, 2)
	if c.Dist(model3d.XYZ(-0.65, 0.15, 0.25)) > 1e-8 {
		t.Errorf("unexpected voxel center %v", c)
	}
	if x, y, z := b.VoxelAt(c); x != 3 || y != 1 || z != 2 {
		t.Errorf("unexpected voxel %d,%d,%d", x, y, z)
	}
	g := model3d.XYZ(1.25, 3.5, 0.75)
	if b.WorldToGrid(b.GridToWorld(g)).Dist(g) > 1e-8 {
		t.Error("grid mapping does not invert")
	}
}

func TestNewBoundsPartialVoxel(t *testing.T) {
	b, err := NewBounds(model3d.Origin, model3d.XYZ(1.05, 1, 1), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if nx, _, _ := b.Dims(); nx != 3 {
		t.Errorf("partial voxels should be included, got %d", nx)
	}
}

func TestNewBoundsErrors(t *testing.T) {
	_, err := NewBounds(model3d.Origin, model3d.XYZ(1, 0, 1), 0.1)
	if errors.Cause(err) != ErrInvalidBounds {
		t.Errorf("expected invalid bounds but got %v", err)
	}
	_, err = NewBounds(model3d.Origin, model3d.XYZ(1, 1, 1), 0)
	if errors.Cause(err) != ErrInvalidBounds {
		t.Errorf("expected invalid bounds but got %v", err)
	}
	_, err = NewBounds(model3d.Origin, model3d.XYZ(1, 1, 1), 1.0)
	if errors.Cause(err) != ErrLowResolution {
		t.Errorf("expected low resolution but got %v", err)
	}
}

func TestDistanceChannel(t *testing.T) {
	ch := &DistanceChannel{MinDistance: -1, MaxDistance: 3, Bits: 8}
	if ch.Encode(-1) != 0 || ch.Encode(-5) != 0 {
		t.Error("distances below the range should encode to 0")
	}
	if ch.Encode(3) != 255 || ch.Encode(10) != 255 {
		t.Error("distances above the range should encode to the max code")
	}
	for _, d := range []float64{-0.9, -0.1, 0, 0.5, 2.9} {
		actual := ch.Decode(ch.Encode(d))
		if math.Abs(actual-d) > 4.0/255 {
			t.Errorf("distance %f decoded as %f", d, actual)
		}
	}
	code := ch.Encode(1) | 5<<8
	if ch.Attribute(code) != 5 {
		t.Errorf("unexpected attribute %d", ch.Attribute(code))
	}
	if math.Abs(ch.Decode(code)-ch.Decode(ch.Encode(1))) > 1e-8 {
		t.Error("attribute bits should not change the distance")
	}
}

func TestDensityChannel(t *testing.T) {
	ch := &DensityChannel{Bits: 4}
	if ch.Encode(-0.5) != 0 || ch.Encode(2) != 15 {
		t.Error("densities should be clamped")
	}
	if ch.Encode(0.5) != 8 {
		t.Errorf("unexpected code %d", ch.Encode(0.5))
	}
	if ch.Decode(15) != 1 {
		t.Errorf("unexpected density %f", ch.Decode(15))
	}
}
