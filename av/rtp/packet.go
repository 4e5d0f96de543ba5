package rtp

import (
	"github.com/opd-ai/h264push/limits"
)

// RTP parameters for H.264 video.
const (
	// Version is the RTP protocol version.
	Version = 2

	// PayloadTypeH264 is the dynamic payload type announced for H.264.
	PayloadTypeH264 = 96

	// ClockRate is the RTP clock for video (RFC 6184 section 8.2.1).
	ClockRate = 90000
)

const (
	fuaType     = 28
	fuStartBit  = 0x80
	fuEndBit    = 0x40
	naluTypeBit = 0x1F
	// forbidden_zero_bit and nal_ref_idc, copied into the FU indicator
	fuIndicatorMask = 0xE0
)

// Payloads splits one NAL unit into RTP payloads for the given MTU.
//
// A unit of at most mtu-12 bytes is returned unchanged (single NAL unit
// mode). A larger unit is split into FU-A fragments (RFC 6184 section 5.8):
// the NAL header byte is dropped and its type moves into the FU header, the
// rest is cut into chunks of at most mtu-14 bytes. The first fragment has the
// S bit, the last the E bit.
func Payloads(nalu []byte, mtu int) [][]byte {
	if len(nalu) == 0 {
		return nil
	}
	if len(nalu) <= limits.MaxSingleNALU(mtu) {
		return [][]byte{nalu}
	}

	header := nalu[0]
	indicator := header&fuIndicatorMask | fuaType
	naluType := header & naluTypeBit
	chunk := limits.MaxFragmentPayload(mtu)
	body := nalu[1:]

	payloads := make([][]byte, 0, FragmentCount(len(nalu), mtu))
	for offset := 0; offset < len(body); offset += chunk {
		end := min(offset+chunk, len(body))

		fuHeader := naluType
		if offset == 0 {
			fuHeader |= fuStartBit
		}
		if end == len(body) {
			fuHeader |= fuEndBit
		}

		p := make([]byte, limits.FUAHeaderSize+end-offset)
		p[0] = indicator
		p[1] = fuHeader
		copy(p[limits.FUAHeaderSize:], body[offset:end])
		payloads = append(payloads, p)
	}
	return payloads
}

// FragmentCount returns how many RTP packets a NAL unit of size bytes needs.
func FragmentCount(size, mtu int) int {
	switch {
	case size <= 0:
		return 0
	case size <= limits.MaxSingleNALU(mtu):
		return 1
	default:
		chunk := limits.MaxFragmentPayload(mtu)
		return (size - 1 + chunk - 1) / chunk
	}
}
