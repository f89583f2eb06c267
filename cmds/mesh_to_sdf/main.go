package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/sdf-grid/sdfgrid"
)

func main() {
	var resolution int
	var voxelSize float64
	var margin float64
	var configPath string
	var threads int
	var heightBits int
	var verbose bool
	var logConfig sdfgrid.LogConfig
	flag.IntVar(&resolution, "resolution", 128, "number of voxels along the longest mesh axis")
	flag.Float64Var(&voxelSize, "voxel-size", 0, "voxel size, overriding -resolution if set")
	flag.Float64Var(&margin, "margin", 2, "padding around the mesh, in voxels")
	flag.StringVar(&configPath, "config", "", "path to TOML rasterizer configuration")
	flag.IntVar(&threads, "threads", 0, "number of worker threads (0 for all CPUs)")
	flag.IntVar(&heightBits, "height-bits", 0,
		"if non-zero, store the height of the nearest surface point above the distance")
	flag.BoolVar(&verbose, "verbose", false, "log progress of each rasterization stage")
	flag.StringVar(&logConfig.Logfile, "log-file", "", "write logs to a rotated file")
	flag.IntVar(&logConfig.MaxSize, "log-max-size", 100, "maximum log file size in megabytes")
	flag.IntVar(&logConfig.MaxAge, "log-max-age", 30, "maximum age of old log files in days")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mesh_to_sdf [flags] <input.stl> <output.bin[.zst]>")
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
	defer logConfig.SetLogOutput().Close()

	log.Println("Loading mesh...")
	tris, err := sdfgrid.Load(inputPath, model3d.ReadSTL)
	essentials.Must(err)
	mesh := model3d.NewMeshTriangles(tris)
	log.Printf(" - %s triangles", humanize.Comma(int64(len(tris))))

	if voxelSize == 0 {
		voxelSize = mesh.Max().Sub(mesh.Min()).MaxCoord() / float64(resolution)
	}
	bounds, err := sdfgrid.NewBoundsMesh(mesh, margin*voxelSize, voxelSize)
	essentials.Must(err)
	nx, ny, nz := bounds.Dims()
	log.Printf(" - grid size %dx%dx%d (%s)", nx, ny, nz,
		humanize.Bytes(uint64(bounds.NumVoxels())*8))

	config := sdfgrid.DefaultConfig(voxelSize)
	if configPath != "" {
		config, err = sdfgrid.LoadConfig(configPath, voxelSize)
		essentials.Must(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threads":
			config.Threads = threads
		case "verbose":
			config.Verbose = verbose
		}
	})

	var source sdfgrid.TriangleSource = &sdfgrid.MeshSource{Mesh: mesh}
	var colorizer sdfgrid.Colorizer
	if heightBits > 0 {
		if heightBits+config.DistanceBits > 64 {
			essentials.Die("too many height bits for distance bits", config.DistanceBits)
		}
		minZ, maxZ := mesh.Min().Z, mesh.Max().Z
		source = sdfgrid.NewAttributedMesh(mesh, 4, func(c model3d.Coord3D) []float64 {
			return []float64{(c.Z - minZ) / math.Max(maxZ-minZ, 1e-8)}
		})
		config.DataDimension = 4
		ch := &sdfgrid.DensityChannel{Bits: heightBits}
		colorizer = func(attrs []float64) uint64 {
			return ch.Encode(attrs[0])
		}
	}

	log.Println("Rasterizing...")
	rasterizer, err := sdfgrid.NewDistanceRasterizer(bounds, config)
	essentials.Must(err)
	grid := sdfgrid.NewArrayGrid(bounds)
	essentials.Must(rasterizer.Rasterize(source, grid, colorizer))

	log.Println("Saving grid...")
	essentials.Must(sdfgrid.Save(outputPath, grid, sdfgrid.WriteGrid))
}
