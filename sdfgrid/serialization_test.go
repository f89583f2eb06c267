package sdfgrid

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

func TestReadWriteGrid(t *testing.T) {
	grid := testSerializationGrid(t)
	var buf bytes.Buffer
	if err := WriteGrid(&buf, grid); err != nil {
		t.Fatal(err)
	}
	if result, err := ReadGrid(&buf); err != nil {
		t.Fatal(err)
	} else if !result.Equal(grid) {
		t.Fatal("grid changed after round trip")
	}
}

func TestReadGridErrors(t *testing.T) {
	grid := testSerializationGrid(t)
	var buf bytes.Buffer
	if err := WriteGrid(&buf, grid); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if _, err := ReadGrid(bytes.NewReader(data[:len(data)-3])); err == nil {
		t.Error("expected error for truncated grid")
	}
	corrupt := append([]byte{}, data...)
	corrupt[0] = 'X'
	if _, err := ReadGrid(bytes.NewReader(corrupt)); err == nil {
		t.Error("expected error for bad magic")
	}
	corrupt = append([]byte{}, data...)
	// The first dimension follows the magic, version and seven floats.
	corrupt[4+4+7*8]++
	if _, err := ReadGrid(bytes.NewReader(corrupt)); errors.Cause(err) != ErrBoundsMismatch {
		t.Errorf("expected bounds mismatch but got %v", err)
	}
}

func TestSaveLoadGrid(t *testing.T) {
	grid := testSerializationGrid(t)
	for _, name := range []string{"grid.bin", "grid.bin.zst"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(path, grid, WriteGrid); err != nil {
			t.Fatal(err)
		}
		result, err := Load(path, ReadGrid)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Equal(grid) {
			t.Fatalf("%s: grid changed after round trip", name)
		}
	}
}

func testSerializationGrid(t *testing.T) *ArrayGrid {
	b, err := NewBounds(model3d.XYZ(-1, 0.5, 2), model3d.XYZ(1, 1.5, 3.25), 0.25)
	if err != nil {
		t.Fatal(err)
	}
	grid := NewArrayGrid(b)
	for i := range grid.Values {
		grid.Values[i] = uint64(i*i) ^ (1 << 40)
	}
	return grid
}
