package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/sdf-grid/sdfgrid"
)

func main() {
	var density bool
	var configPath string
	var scale float64
	flag.BoolVar(&density, "density", false, "treat the grid as a density grid")
	flag.StringVar(&configPath, "config", "", "configuration the grid was created with")
	flag.Float64Var(&scale, "scale", 1, "marching cubes step, in voxels")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: grid_to_mesh [flags] <input.bin[.zst]> <output.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	log.Println("Loading grid...")
	grid, err := sdfgrid.Load(inputPath, sdfgrid.ReadGrid)
	essentials.Must(err)
	voxelSize := grid.Bounds().VoxelSize
	config := sdfgrid.DefaultConfig(voxelSize)
	if configPath != "" {
		config, err = sdfgrid.LoadConfig(configPath, voxelSize)
		essentials.Must(err)
	}

	var solid model3d.Solid
	if density {
		solid = sdfgrid.DensitySolid(grid, &sdfgrid.DensityChannel{Bits: config.DensityBits})
	} else {
		solid = sdfgrid.GridSolid(grid, config.DistanceChannel())
	}

	log.Println("Creating mesh...")
	mesh := model3d.MarchingCubesSearch(solid, voxelSize*scale, 8)
	log.Printf(" - %d triangles, volume %f", mesh.NumTriangles(), mesh.Volume())
	essentials.Must(mesh.SaveGroupedSTL(outputPath))
}
