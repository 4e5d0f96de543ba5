// Package rtp streams H.264 NAL units as RTP over UDP following RFC 6184.
//
// A Session owns the stream state (SSRC, sequence number, timestamp and the
// destination) and the UDP socket. Each NAL unit handed to SendNALU becomes
// either one RTP packet (single NAL unit mode) or a run of FU-A fragments
// when it does not fit into the MTU. Packets are built with pion/rtp.
//
// # Packetization
//
// With the default 1400 byte MTU a NAL unit of up to 1388 bytes is sent
// as-is after the 12 byte RTP header. Larger units lose their header byte;
// its type and NRI move into a 2 byte FU indicator/FU header pair and the
// remainder is cut into chunks of at most 1386 bytes:
//
//	FU indicator = (nal[0] & 0xE0) | 28
//	FU header    = S<<7 | E<<6 | (nal[0] & 0x1F)
//
// The marker bit is set on every single NAL unit packet and on the last
// fragment of a fragmented unit.
//
// # Timing
//
// All packets of one NAL unit share one timestamp. After each unit the
// timestamp advances by 90000/fps, so parameter sets and slices each
// consume a frame interval. Sequence numbers advance once per packet and
// both counters wrap silently.
//
// # Usage
//
//	session, err := rtp.NewSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Start(ctx, "192.168.1.20", 5004, 30); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Stop()
//
//	for nalu := range h264.NALUs(buf) {
//	    if err := session.SendNALU(nalu); err != nil {
//	        var sendErr *rtp.SendError
//	        if !errors.As(err, &sendErr) {
//	            return err
//	        }
//	    }
//	}
//
// SessionDescription renders an SDP file describing the stream so players
// such as ffplay or VLC can receive it.
//
// # Thread Safety
//
// Session methods are serialized on an internal mutex; concurrent senders
// never interleave the packets of two NAL units.
package rtp
