// Package h264 splits H.264 Annex-B byte streams into NAL units.
//
// An encoder delivers buffers in which every NAL unit is preceded by a
// 3-byte (00 00 01) or 4-byte (00 00 00 01) start code. NALUs walks such a
// buffer lazily and yields each unit with its start code removed:
//
//	for nalu := range h264.NALUs(buf) {
//	    if nalu.IsKeyFrame() {
//	        // IDR slice
//	    }
//	    session.SendNALU(nalu)
//	}
//
// Emulation-prevention bytes are left untouched; the payload is exactly what
// an RFC 6184 packetizer must carry. Every yielded NALU owns a copy of its
// bytes, so the input buffer may be reused as soon as iteration returns.
//
// No reassembly is performed across calls: callers must hand over buffers
// that start and end on NAL unit boundaries, which is what hardware encoders
// produce.
//
// For replaying recorded elementary streams, SplitAccessUnits groups NAL
// units into pictures and AnnexB re-encodes a group as one buffer.
package h264
