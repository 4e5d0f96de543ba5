package h264

import "fmt"

// NALUType is the 5-bit nal_unit_type from the NAL header (ITU-T H.264 Table 7-1).
type NALUType uint8

// H.264 NAL unit types used by the pusher.
const (
	NALUTypeSlice      NALUType = 1
	NALUTypeDPA        NALUType = 2
	NALUTypeDPB        NALUType = 3
	NALUTypeDPC        NALUType = 4
	NALUTypeIDR        NALUType = 5
	NALUTypeSEI        NALUType = 6
	NALUTypeSPS        NALUType = 7
	NALUTypePPS        NALUType = 8
	NALUTypeAUD        NALUType = 9
	NALUTypeEndSeq     NALUType = 10
	NALUTypeEndStream  NALUType = 11
	NALUTypeFillerData NALUType = 12
	NALUTypeSTAPA      NALUType = 24
	NALUTypeFUA        NALUType = 28
)

const (
	typeMask      = 0x1F
	nriMask       = 0x60
	forbiddenMask = 0x80
)

var naluTypeNames = map[NALUType]string{
	NALUTypeSlice:      "Slice",
	NALUTypeDPA:        "DPA",
	NALUTypeDPB:        "DPB",
	NALUTypeDPC:        "DPC",
	NALUTypeIDR:        "IDR",
	NALUTypeSEI:        "SEI",
	NALUTypeSPS:        "SPS",
	NALUTypePPS:        "PPS",
	NALUTypeAUD:        "AUD",
	NALUTypeEndSeq:     "EndOfSequence",
	NALUTypeEndStream:  "EndOfStream",
	NALUTypeFillerData: "FillerData",
	NALUTypeSTAPA:      "STAP-A",
	NALUTypeFUA:        "FU-A",
}

// String returns the conventional short name of the type.
func (t NALUType) String() string {
	if name, ok := naluTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// NALU is a single NAL unit with its start code stripped.
type NALU struct {
	// Data holds the NAL header byte followed by the payload.
	Data []byte
	// Type is Data[0] & 0x1F.
	Type NALUType
}

// NewNALU wraps data, deriving the type from the NAL header byte.
// data is not copied.
func NewNALU(data []byte) NALU {
	n := NALU{Data: data}
	if len(data) > 0 {
		n.Type = NALUType(data[0] & typeMask)
	}
	return n
}

// IsKeyFrame reports whether the unit is an IDR slice.
func (n NALU) IsKeyFrame() bool {
	return n.Type == NALUTypeIDR
}

// Len returns the size of the unit in bytes.
func (n NALU) Len() int {
	return len(n.Data)
}

// NRI returns the nal_ref_idc bits in place (mask 0x60).
func (n NALU) NRI() byte {
	if len(n.Data) == 0 {
		return 0
	}
	return n.Data[0] & nriMask
}

// ForbiddenBit returns the forbidden_zero_bit in place (mask 0x80).
func (n NALU) ForbiddenBit() byte {
	if len(n.Data) == 0 {
		return 0
	}
	return n.Data[0] & forbiddenMask
}

// IsVCL reports whether the unit carries coded slice data.
func (n NALU) IsVCL() bool {
	return n.Type >= NALUTypeSlice && n.Type <= NALUTypeIDR
}

// FirstSliceInPicture reports whether a VCL unit starts a new picture.
// first_mb_in_slice is the first ue(v) of the slice header; it is zero
// exactly when the first bit after the NAL header is set.
func (n NALU) FirstSliceInPicture() bool {
	if !n.IsVCL() || len(n.Data) < 2 {
		return false
	}
	return n.Data[1]&0x80 != 0
}
