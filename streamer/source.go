package streamer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrSourceClosed is returned by Push after Close.
var ErrSourceClosed = errors.New("source closed")

// Source produces encoded Annex-B buffers. Next blocks until a buffer is
// available and returns io.EOF once the stream has ended.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// ChanSource is a bounded queue between an encoder and a Pipeline. Push and
// Close may be called from different goroutines.
type ChanSource struct {
	buffers chan []byte
	done    chan struct{}
	once    sync.Once

	// pushing is read-held by every Push in progress. Next takes it for
	// writing once done is closed, so no Push can still queue after Next
	// has reported io.EOF.
	pushing sync.RWMutex
}

// NewChanSource creates a ChanSource holding at most capacity buffers.
// A capacity below one is treated as one.
func NewChanSource(capacity int) *ChanSource {
	if capacity < 1 {
		capacity = 1
	}
	return &ChanSource{
		buffers: make(chan []byte, capacity),
		done:    make(chan struct{}),
	}
}

// Push queues a copy of buf, blocking while the queue is full.
//
// Returns:
//   - error: ErrSourceClosed after Close, or ctx.Err() when ctx ends first
func (s *ChanSource) Push(ctx context.Context, buf []byte) error {
	s.pushing.RLock()
	defer s.pushing.RUnlock()

	select {
	case <-s.done:
		return ErrSourceClosed
	default:
	}

	select {
	case s.buffers <- bytes.Clone(buf):
		return nil
	case <-s.done:
		return ErrSourceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the oldest queued buffer. Buffers queued before Close are
// still delivered; after that Next returns io.EOF.
func (s *ChanSource) Next(ctx context.Context) ([]byte, error) {
	select {
	case buf := <-s.buffers:
		return buf, nil
	default:
	}

	select {
	case buf := <-s.buffers:
		return buf, nil
	case <-s.done:
		s.pushing.Lock()
		defer s.pushing.Unlock()
		select {
		case buf := <-s.buffers:
			return buf, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close ends the stream. It is safe to call more than once.
func (s *ChanSource) Close() {
	s.once.Do(func() {
		close(s.done)
		logrus.WithFields(logrus.Fields{
			"function": "ChanSource.Close",
			"pending":  len(s.buffers),
		}).Debug("Source closed")
	})
}
