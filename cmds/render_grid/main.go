package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/model3d/render3d"
	"github.com/unixpickle/sdf-grid/sdfgrid"
)

func main() {
	var density bool
	var configPath string
	var gridSize int
	var imageSize int
	var fps float64
	var frames int
	flag.BoolVar(&density, "density", false, "treat the grid as a density grid")
	flag.StringVar(&configPath, "config", "", "configuration the grid was created with")
	flag.IntVar(&gridSize, "grid-size", 3, "grid size (used for rows and columns)")
	flag.IntVar(&imageSize, "image-size", 300, "size of each image in the grid")
	flag.Float64Var(&fps, "fps", 10.0, "FPS for GIF outputs")
	flag.IntVar(&frames, "frames", 20, "total number of frames for GIF outputs")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: render_grid [flags] <input.bin[.zst]> <output.png>")
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

	log.Println("Creating renderable object...")
	var solid model3d.Solid
	if density {
		solid = sdfgrid.DensitySolid(grid, &sdfgrid.DensityChannel{Bits: config.DensityBits})
	} else {
		solid = sdfgrid.GridSolid(grid, config.DistanceChannel())
	}
	mesh := model3d.MarchingCubesSearch(solid, voxelSize, 8)
	object := render3d.Objectify(model3d.MeshToCollider(mesh), nil)

	log.Println("Rendering...")
	ext := filepath.Ext(outputPath)
	if strings.ToLower(ext) == ".gif" {
		essentials.Must(
			render3d.SaveRotatingGIF(
				outputPath,
				object,
				model3d.Z(1),
				model3d.YZ(-1, 0.1).Normalize(),
				imageSize,
				frames,
				fps,
				nil,
			),
		)
	} else {
		essentials.Must(
			render3d.SaveRandomGrid(outputPath, object, gridSize, gridSize, imageSize, nil),
		)
	}
}
