package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/h264push/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Input.Path = "clip.h264"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1", cfg.Stream.Host)
	assert.Equal(t, 5004, cfg.Stream.Port)
	assert.Equal(t, 30, cfg.Stream.FPS)
	assert.Equal(t, limits.DefaultMTU, cfg.Stream.MTU)
	assert.Equal(t, DefaultWriteTimeout, cfg.Stream.WriteTimeout)
	assert.Empty(t, cfg.Signaling.URL)
	assert.Empty(t, cfg.Status.Addr)

	assert.Error(t, cfg.Validate(), "input path is required")
	assert.NoError(t, validConfig().Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h264push.yaml")
	data := `
stream:
  host: 192.168.1.20
  fps: 25
  write_timeout: 50ms
input:
  path: camera.h264
  loop: true
signaling:
  url: ws://example.com:8080/ws
device:
  directory_url: http://example.com:8080/api/online_devices
status:
  addr: ":8081"
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", cfg.Stream.Host)
	assert.Equal(t, 5004, cfg.Stream.Port, "defaults kept for missing keys")
	assert.Equal(t, 25, cfg.Stream.FPS)
	assert.Equal(t, 50*time.Millisecond, cfg.Stream.WriteTimeout)
	assert.True(t, cfg.Input.Loop)
	assert.Equal(t, ":8081", cfg.Status.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty host", func(c *Config) { c.Stream.Host = "" }, "stream host"},
		{"port zero", func(c *Config) { c.Stream.Port = 0 }, "invalid stream port"},
		{"port too large", func(c *Config) { c.Stream.Port = 70000 }, "invalid stream port"},
		{"negative write timeout", func(c *Config) { c.Stream.WriteTimeout = -time.Second }, "invalid write timeout"},
		{"fps zero", func(c *Config) { c.Stream.FPS = 0 }, "invalid fps"},
		{"fps too large", func(c *Config) { c.Stream.FPS = 90001 }, "invalid fps"},
		{"mtu too small", func(c *Config) { c.Stream.MTU = 10 }, "invalid mtu"},
		{"loop stdin", func(c *Config) { c.Input.Path = "-"; c.Input.Loop = true }, "standard input"},
		{"http signaling", func(c *Config) { c.Signaling.URL = "http://example.com/ws" }, "signaling url"},
		{"relative directory", func(c *Config) { c.Device.DirectoryURL = "/api/online_devices" }, "directory url"},
		{"no identity file", func(c *Config) { c.Device.IdentityFile = "" }, "identity file"},
		{"bad log level", func(c *Config) { c.Log.Level = "LOUD" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Stream.Port = 0
	cfg.Stream.FPS = -1

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid stream port")
	assert.ErrorContains(t, err, "invalid fps")
}
