// Package config holds the settings of the h264push executable.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/opd-ai/h264push/limits"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultWriteTimeout bounds a send blocked on a full socket buffer.
const DefaultWriteTimeout = 200 * time.Millisecond

// Config is the executable configuration. Zero values are filled by
// Default; command line flags override values loaded from a file.
type Config struct {
	Stream    StreamConfig    `yaml:"stream"`
	Input     InputConfig     `yaml:"input"`
	Signaling SignalingConfig `yaml:"signaling"`
	Device    DeviceConfig    `yaml:"device"`
	Status    StatusConfig    `yaml:"status"`
	Log       LogConfig       `yaml:"log"`
}

// StreamConfig describes the RTP destination.
type StreamConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	FPS        int    `yaml:"fps"`
	MTU        int    `yaml:"mtu"`
	ListenAddr string `yaml:"listen_addr"`
	Name       string `yaml:"name"`
	SDPFile    string `yaml:"sdp_file"`

	// WriteTimeout bounds one datagram send. Zero sends without a deadline.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// InputConfig selects the H.264 source. Path "-" reads standard input.
type InputConfig struct {
	Path string `yaml:"path"`
	Loop bool   `yaml:"loop"`
}

// SignalingConfig enables presence announcements when URL is set.
type SignalingConfig struct {
	URL string `yaml:"url"`
}

// DeviceConfig locates the identity file and the device directory.
type DeviceConfig struct {
	IdentityFile string `yaml:"identity_file"`
	DirectoryURL string `yaml:"directory_url"`
}

// StatusConfig enables the HTTP status API when Addr is set.
type StatusConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			Host:       "127.0.0.1",
			Port:       5004,
			FPS:        30,
			MTU:        limits.DefaultMTU,
			ListenAddr: ":0",
			Name:       "h264push",

			WriteTimeout: DefaultWriteTimeout,
		},
		Device: DeviceConfig{
			IdentityFile: "h264push-identity.yaml",
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"path":     path,
	}).Debug("Loaded configuration file")
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Stream.Host == "" {
		errs = append(errs, errors.New("stream host cannot be empty"))
	}
	if c.Stream.Port <= 0 || c.Stream.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid stream port %d: must be between 1 and 65535", c.Stream.Port))
	}
	if c.Stream.FPS <= 0 || c.Stream.FPS > 90000 {
		errs = append(errs, fmt.Errorf("invalid fps %d: must be between 1 and 90000", c.Stream.FPS))
	}
	if err := limits.ValidateMTU(c.Stream.MTU); err != nil {
		errs = append(errs, fmt.Errorf("invalid mtu %d: %w", c.Stream.MTU, err))
	}
	if c.Stream.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("invalid write timeout %s: cannot be negative", c.Stream.WriteTimeout))
	}
	if c.Input.Path == "" {
		errs = append(errs, errors.New("input path cannot be empty"))
	}
	if c.Input.Path == "-" && c.Input.Loop {
		errs = append(errs, errors.New("loop cannot be used with standard input"))
	}
	if c.Signaling.URL != "" {
		if err := checkURL(c.Signaling.URL, "ws", "wss"); err != nil {
			errs = append(errs, fmt.Errorf("invalid signaling url: %w", err))
		}
	}
	if c.Device.DirectoryURL != "" {
		if err := checkURL(c.Device.DirectoryURL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("invalid directory url: %w", err))
		}
	}
	if c.Device.IdentityFile == "" {
		errs = append(errs, errors.New("identity file cannot be empty"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}

	return errors.Join(errs...)
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %s url", raw, strings.Join(schemes, " or "))
}
