package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// SSRCProvider generates the synchronization source identifier of a session.
type SSRCProvider interface {
	GenerateSSRC() (uint32, error)
}

// RandomSSRCProvider draws SSRCs from crypto/rand.
type RandomSSRCProvider struct{}

// GenerateSSRC returns a random 32-bit identifier.
func (RandomSSRCProvider) GenerateSSRC() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// TimeProvider abstracts the clock used for session statistics.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider implements TimeProvider using the system clock.
type DefaultTimeProvider struct{}

// Now returns the current system time.
func (DefaultTimeProvider) Now() time.Time {
	return time.Now()
}
