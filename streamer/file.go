package streamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/opd-ai/h264push/av/h264"
	"github.com/sirupsen/logrus"
)

// ErrNoAccessUnits is returned when an input file holds no NAL units.
var ErrNoAccessUnits = errors.New("no access units found")

// FileSource replays an Annex-B elementary stream. Each Next returns one
// access unit re-encoded with 4-byte start codes; calls after the first are
// held back so units leave at most once per frame interval.
type FileSource struct {
	path     string
	units    [][]byte
	index    int
	loop     bool
	loops    int
	interval time.Duration
	clock    Clock
	next     time.Time
}

// FileSourceOption configures a FileSource.
type FileSourceOption func(*FileSource)

// WithLoop restarts the file from the beginning instead of ending.
func WithLoop(loop bool) FileSourceOption {
	return func(f *FileSource) { f.loop = loop }
}

// WithClock replaces the clock used for pacing.
func WithClock(c Clock) FileSourceOption {
	return func(f *FileSource) { f.clock = c }
}

// NewFileSource reads path and prepares it for replay at fps access units
// per second.
func NewFileSource(path string, fps int, opts ...FileSourceOption) (*FileSource, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d: must be positive", fps)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	src, err := NewBufferSource(data, fps, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.path = path

	logrus.WithFields(logrus.Fields{
		"function":       "NewFileSource",
		"path":           path,
		"size":           len(data),
		"access_units":   len(src.units),
		"frame_interval": src.interval.String(),
		"loop":           src.loop,
	}).Info("Loaded H.264 file")

	return src, nil
}

// NewBufferSource is NewFileSource for an in-memory Annex-B stream.
func NewBufferSource(data []byte, fps int, opts ...FileSourceOption) (*FileSource, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d: must be positive", fps)
	}

	aus := h264.SplitAccessUnits(data)
	if len(aus) == 0 {
		return nil, ErrNoAccessUnits
	}

	f := &FileSource{
		units:    make([][]byte, 0, len(aus)),
		interval: time.Second / time.Duration(fps),
		clock:    SystemClock{},
	}
	for _, au := range aus {
		f.units = append(f.units, h264.AnnexB(au))
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Next waits for the next frame slot and returns the next access unit.
func (f *FileSource) Next(ctx context.Context) ([]byte, error) {
	if f.index >= len(f.units) {
		if !f.loop {
			return nil, io.EOF
		}
		f.index = 0
		f.loops++
		logrus.WithFields(logrus.Fields{
			"function": "FileSource.Next",
			"path":     f.path,
			"loops":    f.loops,
		}).Debug("Restarting file")
	}

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	unit := f.units[f.index]
	f.index++
	return unit, nil
}

// wait blocks until the slot of the next unit. The schedule is anchored to
// the first unit so a slow consumer catches up instead of drifting.
func (f *FileSource) wait(ctx context.Context) error {
	now := f.clock.Now()
	if f.next.IsZero() {
		f.next = now.Add(f.interval)
		return nil
	}

	if d := f.next.Sub(now); d > 0 {
		select {
		case <-f.clock.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.next = f.next.Add(f.interval)
	return nil
}

// AccessUnits returns how many access units one pass of the file holds.
func (f *FileSource) AccessUnits() int {
	return len(f.units)
}

// Loops returns how many times the file has restarted.
func (f *FileSource) Loops() int {
	return f.loops
}
