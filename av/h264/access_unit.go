package h264

// startCode4 is the start code AnnexB writes before every unit.
var startCode4 = []byte{0x00, 0x00, 0x00, 0x01}

// SplitAccessUnits groups the NAL units of buf into access units (pictures).
//
// A new access unit begins once a VCL unit has been seen and the next unit is
// an AUD, SPS, PPS or SEI, or is a slice whose first_mb_in_slice is zero.
func SplitAccessUnits(buf []byte) [][]NALU {
	var (
		units  [][]NALU
		cur    []NALU
		sawVCL bool
	)
	for n := range NALUs(buf) {
		if sawVCL && startsAccessUnit(n) {
			units = append(units, cur)
			cur = nil
			sawVCL = false
		}
		cur = append(cur, n)
		if n.IsVCL() {
			sawVCL = true
		}
	}
	if len(cur) > 0 {
		units = append(units, cur)
	}
	return units
}

func startsAccessUnit(n NALU) bool {
	switch n.Type {
	case NALUTypeAUD, NALUTypeSPS, NALUTypePPS, NALUTypeSEI:
		return true
	default:
		return n.FirstSliceInPicture()
	}
}

// AnnexB encodes nalus as one Annex-B buffer using 4-byte start codes.
func AnnexB(nalus []NALU) []byte {
	size := 0
	for _, n := range nalus {
		size += len(startCode4) + len(n.Data)
	}
	out := make([]byte, 0, size)
	for _, n := range nalus {
		out = append(out, startCode4...)
		out = append(out, n.Data...)
	}
	return out
}
