package sdfgrid

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

const (
	gridMagic   = "SDFG"
	gridVersion = 1
)

// WriteGrid serializes an ArrayGrid: a header with the bounds, followed by
// every voxel as a little-endian uint64 in x-fastest order.
func WriteGrid(w io.Writer, g *ArrayGrid) error {
	if err := writeGrid(w, g); err != nil {
		return errors.Wrap(err, "write grid")
	}
	return nil
}

func writeGrid(w io.Writer, g *ArrayGrid) error {
	b := g.bounds
	if _, err := io.WriteString(w, gridMagic); err != nil {
		return err
	}
	header := []float64{
		b.Min.X, b.Min.Y, b.Min.Z,
		b.Max.X, b.Max.Y, b.Max.Z,
		b.VoxelSize,
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(gridVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	dims := []int32{int32(b.nx), int32(b.ny), int32(b.nz)}
	if err := binary.Write(w, binary.LittleEndian, dims); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, g.Values)
}

// ReadGrid reads the output of WriteGrid.
func ReadGrid(r io.Reader) (*ArrayGrid, error) {
	res, err := readGrid(r)
	if err != nil {
		return nil, errors.Wrap(err, "read grid")
	}
	return res, nil
}

func readGrid(r io.Reader) (*ArrayGrid, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != gridMagic {
		return nil, errors.Errorf("unexpected magic %q", magic[:])
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != gridVersion {
		return nil, errors.Errorf("unsupported version %d", version)
	}
	var header [7]float64
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	var dims [3]int32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, err
	}
	b, err := NewBounds(
		model3d.XYZ(header[0], header[1], header[2]),
		model3d.XYZ(header[3], header[4], header[5]),
		header[6],
	)
	if err != nil {
		return nil, err
	}
	if b.nx != int(dims[0]) || b.ny != int(dims[1]) || b.nz != int(dims[2]) {
		return nil, errors.Wrapf(ErrBoundsMismatch, "stored dims %dx%dx%d, computed %dx%dx%d",
			dims[0], dims[1], dims[2], b.nx, b.ny, b.nz)
	}
	g := NewArrayGrid(b)
	if err := binary.Read(r, binary.LittleEndian, g.Values); err != nil {
		return nil, err
	}
	return g, nil
}
