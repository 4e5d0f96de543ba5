// Package main provides the h264push command, which streams a raw H.264
// elementary stream to a receiver as RTP over UDP.
//
// The input is an Annex-B file replayed at the configured frame rate, or
// standard input when piped from an encoder:
//
//	ffmpeg -i cam.mp4 -c:v libx264 -bsf:v h264_mp4toannexb -f h264 - | h264push -input - -host 192.168.1.20
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/h264push/config"
)

// CLI configuration
type CLIConfig struct {
	configFile   string
	host         string
	port         int
	fps          int
	mtu          int
	listenAddr   string
	writeTimeout time.Duration
	input        string
	loop         bool
	streamName   string
	sdpFile      string
	signalingURL string
	directoryURL string
	identityFile string
	statusAddr   string
	logLevel     string
	logFile      string
	help         bool

	// set holds the names of flags given on the command line.
	set map[string]bool
}

// parseCLIFlags parses args and returns the configuration.
func parseCLIFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	cli := &CLIConfig{set: make(map[string]bool)}
	defaults := config.Default()

	fs.StringVar(&cli.configFile, "config", "", "YAML configuration file")

	// Stream configuration
	fs.StringVar(&cli.host, "host", defaults.Stream.Host, "Destination host")
	fs.IntVar(&cli.port, "port", defaults.Stream.Port, "Destination UDP port")
	fs.IntVar(&cli.fps, "fps", defaults.Stream.FPS, "Frame rate; sets the RTP timestamp step")
	fs.IntVar(&cli.mtu, "mtu", defaults.Stream.MTU, "Largest RTP packet in bytes")
	fs.StringVar(&cli.listenAddr, "listen", defaults.Stream.ListenAddr, "Local UDP address to send from")
	fs.DurationVar(&cli.writeTimeout, "write-timeout", defaults.Stream.WriteTimeout, "Longest a single datagram send may block (0 disables)")
	fs.StringVar(&cli.streamName, "name", defaults.Stream.Name, "Session name announced in the SDP")
	fs.StringVar(&cli.sdpFile, "sdp", "", "Write the session description to this file")

	// Input configuration
	fs.StringVar(&cli.input, "input", "", "Annex-B H.264 file, or - for standard input")
	fs.BoolVar(&cli.loop, "loop", false, "Restart the input file when it ends")

	// Presence configuration
	fs.StringVar(&cli.signalingURL, "signaling", "", "Signaling WebSocket URL (ws://host:8080/ws)")
	fs.StringVar(&cli.directoryURL, "directory", "", "Online device list URL (http://host:8080/api/online_devices)")
	fs.StringVar(&cli.identityFile, "identity", defaults.Device.IdentityFile, "File holding the device identity")
	fs.StringVar(&cli.statusAddr, "status", "", "Status HTTP listen address (for example :8080)")

	// Logging configuration
	fs.StringVar(&cli.logLevel, "log-level", defaults.Log.Level, "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cli.logFile, "log-file", "", "Log file path, rotated daily (default: stdout only)")

	// Help
	fs.BoolVar(&cli.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { cli.set[f.Name] = true })
	return cli, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "h264push - stream H.264 as RTP over UDP")
	fmt.Fprintln(w, "=======================================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s -input FILE [options]\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  # Loop a clip to a receiver and write an SDP file for ffplay\n")
	fmt.Fprintf(w, "  %s -input clip.h264 -loop -host 192.168.1.20 -sdp stream.sdp\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Announce presence and serve the status API\n")
	fmt.Fprintf(w, "  %s -input clip.h264 -signaling ws://server:8080/ws -status :8081\n", fs.Name())
}

// buildConfig loads the config file, if any, and applies the flags that were
// given on the command line on top of it.
func buildConfig(cli *CLIConfig) (*config.Config, error) {
	cfg := config.Default()
	if cli.configFile != "" {
		loaded, err := config.Load(cli.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := map[string]func(){
		"host":          func() { cfg.Stream.Host = cli.host },
		"port":          func() { cfg.Stream.Port = cli.port },
		"fps":           func() { cfg.Stream.FPS = cli.fps },
		"mtu":           func() { cfg.Stream.MTU = cli.mtu },
		"listen":        func() { cfg.Stream.ListenAddr = cli.listenAddr },
		"write-timeout": func() { cfg.Stream.WriteTimeout = cli.writeTimeout },
		"name":          func() { cfg.Stream.Name = cli.streamName },
		"sdp":           func() { cfg.Stream.SDPFile = cli.sdpFile },
		"input":         func() { cfg.Input.Path = cli.input },
		"loop":          func() { cfg.Input.Loop = cli.loop },
		"signaling":     func() { cfg.Signaling.URL = cli.signalingURL },
		"directory":     func() { cfg.Device.DirectoryURL = cli.directoryURL },
		"identity":      func() { cfg.Device.IdentityFile = cli.identityFile },
		"status":        func() { cfg.Status.Addr = cli.statusAddr },
		"log-level":     func() { cfg.Log.Level = cli.logLevel },
		"log-file":      func() { cfg.Log.File = cli.logFile },
	}
	for name, apply := range overrides {
		if cli.set[name] {
			apply()
		}
	}
	return cfg, nil
}

// validateCLIConfig validates the merged configuration.
func validateCLIConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// main is the entry point of h264push.
func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	cli, err := parseCLIFlags(fs, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if cli.help {
		printUsage(os.Stdout, fs)
		os.Exit(0)
	}

	cfg, err := buildConfig(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := validateCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	if err := setupLogger(cfg.Log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "h264push: %v\n", err)
		os.Exit(1)
	}
}
