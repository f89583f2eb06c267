package sdfgrid

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdf.log")
	c := &LogConfig{Logfile: path, MaxSize: 1, MaxAge: 1}
	closer := c.SetLogOutput()
	log.Println("hello from the log file")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	(&LogConfig{}).SetLogOutput()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello from the log file") {
		t.Errorf("unexpected log contents %q", data)
	}
}
