package h264

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNALU(t *testing.T) {
	n := NewNALU([]byte{0x65, 0x88})
	assert.Equal(t, NALUTypeIDR, n.Type)
	assert.True(t, n.IsKeyFrame())
	assert.Equal(t, byte(0x60), n.NRI())
	assert.Equal(t, byte(0x00), n.ForbiddenBit())
	assert.Equal(t, 2, n.Len())

	n = NewNALU([]byte{0xC1})
	assert.Equal(t, NALUTypeSlice, n.Type)
	assert.Equal(t, byte(0x40), n.NRI())
	assert.Equal(t, byte(0x80), n.ForbiddenBit())

	empty := NewNALU(nil)
	assert.Equal(t, NALUType(0), empty.Type)
	assert.Equal(t, byte(0), empty.NRI())
	assert.False(t, empty.IsKeyFrame())
}

func TestNALUType_String(t *testing.T) {
	assert.Equal(t, "IDR", NALUTypeIDR.String())
	assert.Equal(t, "FU-A", NALUTypeFUA.String())
	assert.Equal(t, "Type(30)", NALUType(30).String())
}

func TestFirstSliceInPicture(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"idr first slice", []byte{0x65, 0x88}, true},
		{"p slice first", []byte{0x41, 0x9A}, true},
		{"p slice continuation", []byte{0x41, 0x4A}, false},
		{"sps", []byte{0x67, 0xFF}, false},
		{"header only", []byte{0x65}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewNALU(tt.data).FirstSliceInPicture())
		})
	}
}

func TestSplitAccessUnits(t *testing.T) {
	buf := AnnexB([]NALU{
		NewNALU([]byte{0x67, 0x42}), // SPS
		NewNALU([]byte{0x68, 0xCE}), // PPS
		NewNALU([]byte{0x65, 0x88}), // IDR, first slice
		NewNALU([]byte{0x65, 0x40}), // IDR, second slice of the same picture
		NewNALU([]byte{0x41, 0x9A}), // P, new picture
		NewNALU([]byte{0x06, 0x05}), // SEI, starts the next picture
		NewNALU([]byte{0x41, 0x9B}), // P
	})

	units := SplitAccessUnits(buf)
	if assert.Len(t, units, 3) {
		assert.Len(t, units[0], 4)
		assert.Len(t, units[1], 1)
		assert.Len(t, units[2], 2)
		assert.Equal(t, NALUTypeSEI, units[2][0].Type)
	}
}

func TestAnnexB_RoundTrip(t *testing.T) {
	nalus := []NALU{
		NewNALU([]byte{0x67, 0x42, 0x00}),
		NewNALU([]byte{0x65, 0x88, 0x84, 0x21}),
	}

	buf := AnnexB(nalus)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00,
		0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x84, 0x21,
	}, buf)
	assert.Equal(t, nalus, Split(buf))
}
