package h264

import (
	"bytes"
	"iter"
)

// FindStartCode returns the index and length of the first Annex-B start code
// at or after offset, or -1, 0 when the rest of buf holds none. A 4-byte code
// is reported as such; the 3-byte pattern is checked first at every position,
// so 00 00 01 is never skipped because of a missing leading zero.
func FindStartCode(buf []byte, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	for i := offset; i+2 < len(buf); i++ {
		if buf[i] != 0 || buf[i+1] != 0 {
			continue
		}
		if buf[i+2] == 1 {
			return i, 3
		}
		if i+3 < len(buf) && buf[i+2] == 0 && buf[i+3] == 1 {
			return i, 4
		}
	}
	return -1, 0
}

// NALUs returns a lazy, ordered sequence of the NAL units in buf.
//
// A unit starts right after a start code and ends at the next start code or
// at the end of buf. Empty spans between adjacent start codes are skipped.
// Bytes before the first start code are ignored. Each yielded NALU owns a copy
// of its data.
func NALUs(buf []byte) iter.Seq[NALU] {
	return func(yield func(NALU) bool) {
		offset := 0
		for {
			sc, scLen := FindStartCode(buf, offset)
			if sc < 0 {
				return
			}

			begin := sc + scLen
			end := len(buf)
			if next, _ := FindStartCode(buf, begin); next >= 0 {
				end = next
			}

			if end > begin {
				if !yield(NewNALU(bytes.Clone(buf[begin:end]))) {
					return
				}
			}
			offset = end
		}
	}
}

// Split returns every NAL unit in buf. It is the eager form of NALUs.
func Split(buf []byte) []NALU {
	var nalus []NALU
	for n := range NALUs(buf) {
		nalus = append(nalus, n)
	}
	return nalus
}
