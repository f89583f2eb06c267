package sdfgrid

import (
	"math"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid rasterizer configuration")

const (
	DefaultSurfaceVoxelSize   = 1.0
	DefaultShellHalfThickness = 1.0
	DefaultDistanceBits       = 16
	DefaultDensityBits        = 8
)

// Config holds the options of a distance or density rasterization.
type Config struct {
	// SurfaceVoxelSize is the spacing of surface samples, relative to the
	// grid voxel size. Smaller values give more precise distances at a
	// higher cost.
	SurfaceVoxelSize float64 `toml:"surface_voxel_size"`

	// ShellHalfThickness is the radius, in voxels, of the band around each
	// surface sample that is seeded with exact distances.
	ShellHalfThickness float64 `toml:"shell_half_thickness"`

	// MinDistance is the (negative) bound on interior distances, and
	// MaxDistance the bound on exterior distances, both in world units.
	MinDistance float64 `toml:"min_distance"`
	MaxDistance float64 `toml:"max_distance"`

	// Threads is the worker count. 0 means GOMAXPROCS, 1 runs sequentially.
	Threads int `toml:"threads"`

	// DataDimension is the number of values per vertex of the input.
	DataDimension int `toml:"data_dimension"`

	DistanceBits int `toml:"distance_bits"`
	DensityBits  int `toml:"density_bits"`

	// UseDistanceRange drops candidates beyond the distance bounds during
	// every propagation pass instead of only the last one.
	UseDistanceRange bool `toml:"use_distance_range"`

	// Verbose enables progress logging.
	Verbose bool `toml:"verbose"`
}

// DefaultConfig creates a configuration whose distance bounds are given in
// voxels of the specified size.
func DefaultConfig(voxelSize float64) *Config {
	return &Config{
		SurfaceVoxelSize:   DefaultSurfaceVoxelSize,
		ShellHalfThickness: DefaultShellHalfThickness,
		MinDistance:        -2 * voxelSize,
		MaxDistance:        2 * voxelSize,
		DataDimension:      DataDimensionGeometry,
		DistanceBits:       DefaultDistanceBits,
		DensityBits:        DefaultDensityBits,
	}
}

// LoadConfig decodes a TOML file on top of the default configuration.
func LoadConfig(path string, voxelSize float64) (*Config, error) {
	c := DefaultConfig(voxelSize)
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return c, nil
}

// Validate checks that every option is in range.
func (c *Config) Validate() error {
	switch {
	case !(c.SurfaceVoxelSize > 0):
		return errors.Wrapf(ErrInvalidConfig, "surface voxel size %f", c.SurfaceVoxelSize)
	case !(c.ShellHalfThickness >= 0):
		return errors.Wrapf(ErrInvalidConfig, "shell half-thickness %f", c.ShellHalfThickness)
	case !(c.MinDistance < 0):
		return errors.Wrapf(ErrInvalidConfig, "min distance %f must be negative", c.MinDistance)
	case !(c.MaxDistance > 0):
		return errors.Wrapf(ErrInvalidConfig, "max distance %f must be positive", c.MaxDistance)
	case math.IsInf(c.MinDistance, 0) || math.IsInf(c.MaxDistance, 0):
		return errors.Wrap(ErrInvalidConfig, "distance bounds must be finite")
	case c.Threads < 0:
		return errors.Wrapf(ErrInvalidConfig, "thread count %d", c.Threads)
	case c.DataDimension < 3:
		return errors.Wrapf(ErrInvalidConfig, "data dimension %d", c.DataDimension)
	case c.DistanceBits < 1 || c.DistanceBits > 63:
		return errors.Wrapf(ErrInvalidConfig, "distance bits %d", c.DistanceBits)
	case c.DensityBits < 1 || c.DensityBits > 63:
		return errors.Wrapf(ErrInvalidConfig, "density bits %d", c.DensityBits)
	}
	return nil
}

// NumThreads resolves the thread count, mapping 0 to GOMAXPROCS.
func (c *Config) NumThreads() int {
	return resolveThreads(c.Threads)
}

// DistanceChannel gets the channel used to encode output distances.
func (c *Config) DistanceChannel() *DistanceChannel {
	return &DistanceChannel{
		MinDistance: c.MinDistance,
		MaxDistance: c.MaxDistance,
		Bits:        c.DistanceBits,
	}
}

func resolveThreads(n int) int {
	if n == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
