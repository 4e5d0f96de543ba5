// Package limits provides centralized packet size constants and validation functions
// for the RTP/H.264 push path. Every component that builds or sizes a datagram reads
// its limits from here, so the MTU arithmetic lives in exactly one place.
//
// # Size Hierarchy
//
//   - DefaultMTU (1400 bytes): the largest RTP packet (header plus payload) the pusher
//     emits. It leaves room for IP and UDP headers below a 1500 byte Ethernet MTU.
//
//   - MaxSingleNALUSize (1388 bytes): the largest NAL unit sent as a single-NALU RTP
//     packet, DefaultMTU minus the 12 byte RTP header.
//
//   - MaxFUPayload (1386 bytes): the largest slice of NAL payload carried by one FU-A
//     fragment, MaxSingleNALUSize minus the 2 byte FU indicator and FU header.
//
// A NAL unit has no upper size limit; anything above MaxSingleNALUSize is split into
// as many FU-A fragments as it needs.
//
// # Validation Functions
//
//	if err := limits.ValidateNALU(nalu); err != nil {
//	    // ErrNALUEmpty
//	}
//
//	if err := limits.ValidateMTU(mtu); err != nil {
//	    // ErrMTUTooSmall
//	}
//
// For a non-default MTU, MaxSingleNALU and MaxFragmentPayload compute the thresholds
// the packetizer switches on.
package limits
