package sdfgrid

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Load opens a file and decodes it with the reader function.
//
// Paths ending in ".zst" are decompressed with zstd.
func Load[T any](path string, reader func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	if isCompressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return zero, errors.Wrap(err, "load "+path)
		}
		defer dec.Close()
		r = dec
	}
	return reader(r)
}

// Save creates a file and encodes obj into it with the writer function.
//
// Paths ending in ".zst" are compressed with zstd.
func Save[T any](path string, obj T, writer func(w io.Writer, obj T) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if isCompressed(path) {
		enc, err := zstd.NewWriter(bw)
		if err != nil {
			return errors.Wrap(err, "save "+path)
		}
		if err := writer(enc, obj); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "save "+path)
		}
	} else if err := writer(bw, obj); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "save "+path)
	}
	return f.Close()
}

func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}
