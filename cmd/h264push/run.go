package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/h264push/av/rtp"
	"github.com/opd-ai/h264push/config"
	"github.com/opd-ai/h264push/device"
	"github.com/opd-ai/h264push/signaling"
	"github.com/opd-ai/h264push/status"
	"github.com/opd-ai/h264push/streamer"
	"github.com/opd-ai/h264push/transport"
)

// stdinQueue is how many encoder buffers may wait between the reader and
// the pipeline.
const stdinQueue = 64

// run streams until the input ends or ctx is cancelled. The status server
// and signaling client, when configured, run alongside the pipeline and stop
// with it.
func run(ctx context.Context, cfg *config.Config, stdin io.Reader) error {
	manager, err := device.NewManager(device.NewFileStore(cfg.Device.IdentityFile), device.HostFingerprint())
	if err != nil {
		return err
	}
	identity := manager.Info()
	log.WithFields(log.Fields{
		"function":    "run",
		"device_id":   identity.DeviceID,
		"device_name": identity.DeviceName,
	}).Info("Device identity ready")

	directory := device.NewRepository(nil)
	if cfg.Device.DirectoryURL != "" {
		if err := directory.Fetch(ctx, cfg.Device.DirectoryURL); err != nil {
			log.WithError(err).Warn("Device directory unavailable")
		}
	}

	session, err := rtp.NewSession(
		rtp.WithMTU(cfg.Stream.MTU),
		rtp.WithListenAddr(cfg.Stream.ListenAddr),
		rtp.WithTransportFactory(transport.NewUDPFactory(
			transport.WithWriteTimeout(cfg.Stream.WriteTimeout),
		)),
	)
	if err != nil {
		return err
	}
	if err := session.Start(ctx, cfg.Stream.Host, cfg.Stream.Port, cfg.Stream.FPS); err != nil {
		return err
	}
	defer session.Stop()

	if cfg.Stream.SDPFile != "" {
		if err := writeSDP(session, cfg.Stream.Name, cfg.Stream.SDPFile); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	src, err := openSource(gctx, cfg.Input, cfg.Stream.FPS, stdin)
	if err != nil {
		return err
	}

	pipeline := streamer.NewPipeline(session)
	g.Go(func() error {
		defer cancel()
		return pipeline.Run(gctx, src)
	})

	if cfg.Status.Addr != "" {
		server := status.NewServer(cfg.Status.Addr, session,
			status.WithPipeline(pipeline),
			status.WithDirectory(directory),
			status.WithIdentity(manager.Info),
			status.WithStreamName(cfg.Stream.Name),
		)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	var client *signaling.Client
	if cfg.Signaling.URL != "" {
		client = signaling.NewClient(cfg.Signaling.URL, signaling.WithRepository(directory))
		client.OnOpen(func() {
			info := manager.Info()
			client.GoOnline(&info)
			manager.SetOnline(info.IsOnline)
		})
		g.Go(func() error {
			runSignaling(gctx, client)
			return nil
		})
	}

	err = g.Wait()

	if client != nil {
		info := manager.Info()
		if client.GoOffline(&info) {
			manager.SetOnline(false)
		}
		_ = client.Close()
	}
	if stopErr := session.Stop(); stopErr != nil {
		log.WithError(stopErr).Warn("Failed to stop RTP session")
	}

	stats := session.Statistics()
	log.WithFields(log.Fields{
		"function":     "run",
		"packets_sent": stats.PacketsSent,
		"nalus_sent":   stats.NALUsSent,
		"send_errors":  stats.SendErrors,
	}).Info("Streaming finished")
	return err
}

// openSource returns the configured input. Standard input is read by a
// goroutine feeding a ChanSource; it is left out of the errgroup because a
// blocked read cannot be interrupted.
func openSource(ctx context.Context, in config.InputConfig, fps int, stdin io.Reader) (streamer.Source, error) {
	if in.Path == "-" {
		src := streamer.NewChanSource(stdinQueue)
		go func() {
			if err := streamer.PumpReader(ctx, stdin, src); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("Failed to read standard input")
			}
		}()
		return src, nil
	}
	return streamer.NewFileSource(in.Path, fps, streamer.WithLoop(in.Loop))
}

// runSignaling keeps one presence connection. A server that cannot be
// reached is logged and does not stop the stream.
func runSignaling(ctx context.Context, client *signaling.Client) {
	if err := client.Connect(ctx); err != nil {
		log.WithError(err).Warn("Signaling unavailable, streaming without presence")
		return
	}
	if err := client.Run(ctx); err != nil {
		log.WithError(err).Warn("Signaling connection lost")
	}
}

// writeSDP saves the session description for players such as ffplay.
func writeSDP(session *rtp.Session, name, path string) error {
	desc, err := session.SessionDescription(name)
	if err != nil {
		return fmt.Errorf("failed to build session description: %w", err)
	}
	if err := os.WriteFile(path, desc, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"function": "writeSDP",
		"path":     path,
	}).Info("Wrote session description")
	return nil
}
