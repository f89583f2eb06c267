package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/sdf-grid/sdfgrid"
)

func main() {
	var density bool
	var configPath string
	flag.BoolVar(&density, "density", false, "treat the grid as a density grid")
	flag.StringVar(&configPath, "config", "", "configuration the grid was created with")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: grid_info [flags] <input.bin[.zst]>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}
	grid, err := sdfgrid.Load(args[0], sdfgrid.ReadGrid)
	essentials.Must(err)
	b := grid.Bounds()
	config := sdfgrid.DefaultConfig(b.VoxelSize)
	if configPath != "" {
		config, err = sdfgrid.LoadConfig(configPath, b.VoxelSize)
		essentials.Must(err)
	}

	nx, ny, nz := b.Dims()
	fmt.Printf("Bounds: %v to %v\n", b.Min, b.Max)
	fmt.Printf("Voxel size: %f\n", b.VoxelSize)
	fmt.Printf("Dimensions: %dx%dx%d (%s voxels, %s)\n", nx, ny, nz,
		humanize.Comma(int64(b.NumVoxels())), humanize.Bytes(uint64(b.NumVoxels())*8))

	voxelVolume := b.VoxelSize * b.VoxelSize * b.VoxelSize
	if density {
		ch := &sdfgrid.DensityChannel{Bits: config.DensityBits}
		var total float64
		var partial int
		for _, code := range grid.Values {
			total += ch.Decode(code)
			if code != 0 && code != ch.MaxCode() {
				partial++
			}
		}
		fmt.Printf("Volume: %f\n", total*voxelVolume)
		fmt.Printf("Partial voxels: %s\n", humanize.Comma(int64(partial)))
	} else {
		ch := config.DistanceChannel()
		var inside int
		attrs := map[uint64]int{}
		for _, code := range grid.Values {
			if ch.Decode(code) < 0 {
				inside++
			}
			attrs[ch.Attribute(code)]++
		}
		fmt.Printf("Interior voxels: %s\n", humanize.Comma(int64(inside)))
		fmt.Printf("Interior volume: %f\n", float64(inside)*voxelVolume)
		fmt.Printf("Distinct attributes: %d\n", len(attrs))
	}
}
