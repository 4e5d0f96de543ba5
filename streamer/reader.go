package streamer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/h264push/av/h264"
	"github.com/sirupsen/logrus"
)

const readChunkSize = 64 * 1024

// PumpReader reads an Annex-B byte stream from r (a pipe from an encoder,
// for example) and pushes it into dst cut on start code boundaries, so no
// NAL unit is ever split between two buffers. dst is closed when r ends.
func PumpReader(ctx context.Context, r io.Reader, dst *ChanSource) error {
	defer dst.Close()

	var (
		pending []byte
		chunk   = make([]byte, readChunkSize)
		pushed  int
	)
	for {
		n, readErr := r.Read(chunk)
		pending = append(pending, chunk[:n]...)

		if cut := lastStartCode(pending); cut > 0 {
			if err := dst.Push(ctx, pending[:cut]); err != nil {
				return err
			}
			pushed++
			pending = append(pending[:0], pending[cut:]...)
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return fmt.Errorf("failed to read stream: %w", readErr)
			}
			if len(pending) > 0 {
				if err := dst.Push(ctx, pending); err != nil {
					return err
				}
				pushed++
			}
			logrus.WithFields(logrus.Fields{
				"function": "PumpReader",
				"buffers":  pushed,
			}).Debug("Stream ended")
			return nil
		}
	}
}

// lastStartCode returns the offset of the last start code in buf that is not
// at its very beginning, or -1. Everything before it holds complete units.
func lastStartCode(buf []byte) int {
	last := -1
	offset := 0
	for {
		sc, scLen := h264.FindStartCode(buf, offset)
		if sc < 0 {
			return last
		}
		if sc > 0 {
			last = sc
		}
		offset = sc + scLen
	}
}
