package sdfgrid

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig(0.5)
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.MinDistance != -1 || c.MaxDistance != 1 {
		t.Errorf("unexpected distance range [%f, %f]", c.MinDistance, c.MaxDistance)
	}
	if c.NumThreads() != runtime.GOMAXPROCS(0) {
		t.Errorf("unexpected thread count %d", c.NumThreads())
	}
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"SurfaceVoxelSize": func(c *Config) { c.SurfaceVoxelSize = 0 },
		"Shell":            func(c *Config) { c.ShellHalfThickness = -1 },
		"MinDistance":      func(c *Config) { c.MinDistance = 0.5 },
		"MaxDistance":      func(c *Config) { c.MaxDistance = -0.5 },
		"Threads":          func(c *Config) { c.Threads = -2 },
		"DataDimension":    func(c *Config) { c.DataDimension = 2 },
		"DistanceBits":     func(c *Config) { c.DistanceBits = 64 },
		"DensityBits":      func(c *Config) { c.DensityBits = 0 },
	}
	for name, modify := range cases {
		c := DefaultConfig(1)
		modify(c)
		if err := c.Validate(); errors.Cause(err) != ErrInvalidConfig {
			t.Errorf("%s: expected invalid config but got %v", name, err)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
surface_voxel_size = 0.5
min_distance = -0.25
threads = 3
use_distance_range = true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if c.SurfaceVoxelSize != 0.5 || c.MinDistance != -0.25 || c.Threads != 3 ||
		!c.UseDistanceRange {
		t.Errorf("unexpected config %+v", c)
	}
	if c.MaxDistance != 0.2 || c.DistanceBits != DefaultDistanceBits {
		t.Errorf("defaults should be kept: %+v", c)
	}

	if err := os.WriteFile(path, []byte("max_distance = -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, 0.1); errors.Cause(err) != ErrInvalidConfig {
		t.Errorf("expected invalid config but got %v", err)
	}
}
