package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/sdf-grid/sdfgrid"
	"golang.org/x/image/tiff"
)

func main() {
	var resolution int
	var voxelSize float64
	var margin float64
	var densityBits int
	var threads int
	var previewPath string
	var logConfig sdfgrid.LogConfig
	flag.IntVar(&resolution, "resolution", 128, "number of voxels along the longest mesh axis")
	flag.Float64Var(&voxelSize, "voxel-size", 0, "voxel size, overriding -resolution if set")
	flag.Float64Var(&margin, "margin", 1, "padding around the mesh, in voxels")
	flag.IntVar(&densityBits, "density-bits", sdfgrid.DefaultDensityBits, "bits per density value")
	flag.IntVar(&threads, "threads", 0, "number of worker threads (0 for all CPUs)")
	flag.StringVar(&previewPath, "preview", "", "save the middle z slice to a TIFF file")
	flag.StringVar(&logConfig.Logfile, "log-file", "", "write logs to a rotated file")
	flag.IntVar(&logConfig.MaxSize, "log-max-size", 100, "maximum log file size in megabytes")
	flag.IntVar(&logConfig.MaxAge, "log-max-age", 30, "maximum age of old log files in days")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mesh_to_density [flags] <input.stl> <output.bin[.zst]>")
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

	if voxelSize == 0 {
		voxelSize = mesh.Max().Sub(mesh.Min()).MaxCoord() / float64(resolution)
	}
	bounds, err := sdfgrid.NewBoundsMesh(mesh, margin*voxelSize, voxelSize)
	essentials.Must(err)

	log.Println("Building wavelet octree...")
	rasterizer, err := sdfgrid.NewWaveletRasterizer(bounds, densityBits)
	essentials.Must(err)
	source := &sdfgrid.MeshSource{Mesh: mesh}
	source.ForEachTriangle(func(t sdfgrid.Triangle) {
		rasterizer.AddTriangle(t.Geometry())
	})
	log.Printf(" - %s nodes, depth %d, volume %f", humanize.Comma(int64(rasterizer.NumNodes())),
		rasterizer.Depth(), rasterizer.Volume())

	log.Println("Materializing densities...")
	grid := sdfgrid.NewArrayGrid(bounds)
	essentials.Must(rasterizer.Materialize(grid, threads))

	log.Println("Saving grid...")
	essentials.Must(sdfgrid.Save(outputPath, grid, sdfgrid.WriteGrid))

	if previewPath != "" {
		log.Println("Saving preview...")
		ch := &sdfgrid.DensityChannel{Bits: densityBits}
		essentials.Must(sdfgrid.Save(previewPath, SliceImage(grid, ch), WriteTIFF))
	}
}

// SliceImage renders the middle z slice of a density grid as a grayscale
// image, with y increasing downward.
func SliceImage(g *sdfgrid.ArrayGrid, ch *sdfgrid.DensityChannel) *image.Gray16 {
	nx, ny, nz := g.Bounds().Dims()
	img := image.NewGray16(image.Rect(0, 0, nx, ny))
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			density := ch.Decode(g.Get(x, y, nz/2))
			img.SetGray16(x, y, color.Gray16{Y: uint16(density * 0xffff)})
		}
	}
	return img
}

func WriteTIFF(w io.Writer, img *image.Gray16) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}
