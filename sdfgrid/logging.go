package sdfgrid

import (
	"io"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
)

// LogConfig configures where progress logs are written.
type LogConfig struct {
	// Logfile is the path of a rotated log file. If empty, logs go to
	// standard error.
	Logfile string `toml:"log_file"`
	MaxSize int    `toml:"max_log_size"`
	MaxAge  int    `toml:"max_log_age"`
}

// SetLogOutput points the standard logger at the configured destination.
//
// When a log file is used, the returned closer releases it.
func (c *LogConfig) SetLogOutput() io.Closer {
	if c.Logfile == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(l)
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}
