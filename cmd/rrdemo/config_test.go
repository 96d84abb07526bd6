package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zeebo/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, cfg.Duration, 10*time.Second)
	assert.Equal(t, cfg.Selectors, 5)
	assert.Equal(t, cfg.IDs, 10)
	assert.Equal(t, cfg.LogLevel, "info")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rrdemo.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(`
duration: 2s
interval: 5ms
selectors: 3
ids: 20
logLevel: debug
`), 0o644))

	cfg, err := loadConfig(path)
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, cfg.Duration, 2*time.Second)
	assert.Equal(t, cfg.Interval, 5*time.Millisecond)
	assert.Equal(t, cfg.Selectors, 3)
	assert.Equal(t, cfg.IDs, 20)
	assert.Equal(t, cfg.Target, 5)
	assert.Equal(t, cfg.LogLevel, "debug")
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("selectors: [1"), 0o644))
	_, err = loadConfig(path)
	assert.Error(t, err)

	cfg := Config{LogLevel: "loud"}.withDefaults()
	assert.Error(t, cfg.Validate())

	cfg = Config{}.withDefaults()
	cfg.Duration = 0
	assert.Error(t, cfg.Validate())
}

func TestRunZeroDuration(t *testing.T) {
	assert.Error(t, run([]string{"-duration", "0"}))
}

func TestRun(t *testing.T) {
	err := run([]string{
		"-duration", "50ms",
		"-interval", "1ms",
		"-selectors", "2",
		"-log-level", "error",
	})
	assert.NoError(t, err)
}
