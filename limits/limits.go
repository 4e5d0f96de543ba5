package limits

import (
	"errors"
	"fmt"
)

const (
	// DefaultMTU is the largest RTP packet the pusher emits (header + payload).
	DefaultMTU = 1400

	// RTPHeaderSize is the fixed RTP header size without CSRCs or extensions.
	RTPHeaderSize = 12

	// FUAHeaderSize is the FU indicator plus the FU header (RFC 6184 section 5.8).
	FUAHeaderSize = 2

	// MaxSingleNALUSize is the largest NAL unit sent without fragmentation.
	MaxSingleNALUSize = DefaultMTU - RTPHeaderSize // 1388

	// MaxFUPayload is the largest NAL payload slice carried by one FU-A fragment.
	MaxFUPayload = DefaultMTU - RTPHeaderSize - FUAHeaderSize // 1386

	// MinMTU is the smallest MTU that can still carry one byte of FU-A payload.
	MinMTU = RTPHeaderSize + FUAHeaderSize + 1
)

var (
	// ErrNALUEmpty indicates an empty NAL unit was provided
	ErrNALUEmpty = errors.New("empty NAL unit")

	// ErrMTUTooSmall indicates an MTU that cannot carry an FU-A fragment
	ErrMTUTooSmall = errors.New("MTU too small")
)

// ValidateNALU rejects an empty NAL unit. There is no upper bound: anything
// above MaxSingleNALU is fragmented.
func ValidateNALU(nalu []byte) error {
	if len(nalu) == 0 {
		return ErrNALUEmpty
	}
	return nil
}

// ValidateMTU checks that mtu leaves room for the RTP and FU-A headers.
func ValidateMTU(mtu int) error {
	if mtu < MinMTU {
		return fmt.Errorf("%w: %d is below minimum %d", ErrMTUTooSmall, mtu, MinMTU)
	}
	return nil
}

// MaxSingleNALU returns the single-NALU threshold for the given MTU.
func MaxSingleNALU(mtu int) int {
	return mtu - RTPHeaderSize
}

// MaxFragmentPayload returns the FU-A fragment payload size for the given MTU.
func MaxFragmentPayload(mtu int) int {
	return mtu - RTPHeaderSize - FUAHeaderSize
}
