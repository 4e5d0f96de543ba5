package rtp

import (
	"errors"
	"fmt"
)

// Session lifecycle errors.
var (
	// ErrSessionNotStarted indicates an operation that needs a started session.
	ErrSessionNotStarted = errors.New("RTP session not started")

	// ErrSessionAlreadyStarted indicates Start on a session that is streaming.
	ErrSessionAlreadyStarted = errors.New("RTP session already started")

	// ErrInvalidFrameRate indicates a frame rate that yields no usable timestamp step.
	ErrInvalidFrameRate = errors.New("invalid frame rate")
)

// ResolutionError reports that the destination could not be resolved.
type ResolutionError struct {
	Host string
	Port int
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SocketError reports that the UDP socket could not be opened.
type SocketError struct {
	ListenAddr string
	Err        error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("failed to open UDP socket on %q: %v", e.ListenAddr, e.Err)
}

func (e *SocketError) Unwrap() error { return e.Err }

// SendError reports a datagram that could not be transmitted. Fragment and
// Fragments locate the packet within its NAL unit (0 of 1 for a single NALU).
type SendError struct {
	SequenceNumber uint16
	Fragment       int
	Fragments      int
	Err            error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send RTP packet seq=%d (fragment %d/%d): %v",
		e.SequenceNumber, e.Fragment+1, e.Fragments, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
