package streamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opd-ai/h264push/av/h264"
	"github.com/opd-ai/h264push/av/rtp"
	"github.com/sirupsen/logrus"
)

// Sender transmits one NAL unit. *rtp.Session implements it.
type Sender interface {
	SendNALU(nalu h264.NALU) error
}

// Stats counts what a Pipeline has processed.
type Stats struct {
	Buffers      uint64 `json:"buffers"`
	NALUs        uint64 `json:"nalus"`
	DroppedNALUs uint64 `json:"dropped_nalus"`
	KeyFrames    uint64 `json:"key_frames"`
}

// Pipeline moves buffers from a Source to a Sender.
type Pipeline struct {
	sender Sender

	mu    sync.Mutex
	stats Stats
}

// NewPipeline creates a pipeline delivering to sender.
func NewPipeline(sender Sender) *Pipeline {
	return &Pipeline{sender: sender}
}

// Run drains src until it ends or ctx is cancelled.
//
// NAL units whose transmission fails with *rtp.SendError are dropped and the
// stream continues. Any other send or source error stops the run.
//
// Returns:
//   - error: nil when src reports io.EOF or ctx is cancelled
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	logrus.WithFields(logrus.Fields{
		"function": "Pipeline.Run",
	}).Info("Pipeline started")

	for {
		buf, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				p.logStopped("source finished")
				return nil
			}
			return fmt.Errorf("failed to read from source: %w", err)
		}

		if err := p.process(buf); err != nil {
			return err
		}
	}
}

// process sends every NAL unit of one encoder buffer.
func (p *Pipeline) process(buf []byte) error {
	p.mu.Lock()
	p.stats.Buffers++
	p.mu.Unlock()

	for nalu := range h264.NALUs(buf) {
		err := p.sender.SendNALU(nalu)

		var sendErr *rtp.SendError
		switch {
		case err == nil:
			p.mu.Lock()
			p.stats.NALUs++
			if nalu.IsKeyFrame() {
				p.stats.KeyFrames++
			}
			p.mu.Unlock()
		case errors.As(err, &sendErr):
			p.mu.Lock()
			p.stats.DroppedNALUs++
			p.mu.Unlock()
			logrus.WithFields(logrus.Fields{
				"function":  "Pipeline.process",
				"nalu_type": nalu.Type.String(),
				"size":      nalu.Len(),
				"error":     err.Error(),
			}).Warn("Dropped NAL unit")
		default:
			logrus.WithFields(logrus.Fields{
				"function":  "Pipeline.process",
				"nalu_type": nalu.Type.String(),
				"error":     err.Error(),
			}).Error("Failed to send NAL unit")
			return fmt.Errorf("failed to send %s: %w", nalu.Type, err)
		}
	}
	return nil
}

func (p *Pipeline) logStopped(reason string) {
	stats := p.Stats()
	logrus.WithFields(logrus.Fields{
		"function":      "Pipeline.Run",
		"reason":        reason,
		"buffers":       stats.Buffers,
		"nalus":         stats.NALUs,
		"dropped_nalus": stats.DroppedNALUs,
	}).Info("Pipeline stopped")
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
