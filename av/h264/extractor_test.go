package h264

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindStartCode(t *testing.T) {
	tests := []struct {
		name      string
		buf       []byte
		offset    int
		wantIndex int
		wantLen   int
	}{
		{"three byte", []byte{0x00, 0x00, 0x01, 0x65}, 0, 0, 3},
		{"four byte", []byte{0x00, 0x00, 0x00, 0x01, 0x65}, 0, 0, 4},
		{"after payload", []byte{0x65, 0xAA, 0x00, 0x00, 0x01, 0x41}, 0, 2, 3},
		{"from offset", []byte{0x00, 0x00, 0x01, 0x65, 0x00, 0x00, 0x01, 0x41}, 3, 4, 3},
		{"none", []byte{0x65, 0x00, 0x02, 0x00}, 0, -1, 0},
		{"trailing 00 00", []byte{0x65, 0x00, 0x00}, 0, -1, 0},
		{"trailing 00 00 00", []byte{0x65, 0x00, 0x00, 0x00}, 0, -1, 0},
		{"three byte at end", []byte{0x65, 0x00, 0x00, 0x01}, 0, 1, 3},
		{"empty", nil, 0, -1, 0},
		{"negative offset", []byte{0x00, 0x00, 0x01}, -5, 0, 3},
		{"offset past end", []byte{0x00, 0x00, 0x01}, 10, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, n := FindStartCode(tt.buf, tt.offset)
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantLen, n)
		})
	}
}

func TestNALUs_ThreeByteStartCodes(t *testing.T) {
	buf := []byte{
		0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x1F, // SPS
		0x00, 0x00, 0x01, 0x68, 0xCE, 0x3C, 0x80, // PPS
		0x00, 0x00, 0x01, 0x65, 0x88, 0x84, // IDR
	}

	nalus := Split(buf)
	require.Len(t, nalus, 3)

	assert.Equal(t, NALUTypeSPS, nalus[0].Type)
	assert.Equal(t, []byte{0x67, 0x42, 0x00, 0x1F}, nalus[0].Data)
	assert.False(t, nalus[0].IsKeyFrame())

	assert.Equal(t, NALUTypePPS, nalus[1].Type)
	assert.Equal(t, []byte{0x68, 0xCE, 0x3C, 0x80}, nalus[1].Data)

	assert.Equal(t, NALUTypeIDR, nalus[2].Type)
	assert.Equal(t, []byte{0x65, 0x88, 0x84}, nalus[2].Data)
	assert.True(t, nalus[2].IsKeyFrame())
}

func TestNALUs_MixedStartCodes(t *testing.T) {
	buf := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x01,
		0x00, 0x00, 0x01, 0x68, 0x02,
		0x00, 0x00, 0x00, 0x01, 0x65, 0x03, 0x04,
		0x00, 0x00, 0x01, 0x41, 0x05,
	}

	nalus := Split(buf)
	require.Len(t, nalus, 4)

	want := [][]byte{
		{0x67, 0x01},
		{0x68, 0x02},
		{0x65, 0x03, 0x04},
		{0x41, 0x05},
	}
	for i, n := range nalus {
		assert.Equal(t, want[i], n.Data, "nalu %d", i)
		assert.Equal(t, NALUType(want[i][0]&0x1F), n.Type, "nalu %d", i)
		assert.Equal(t, n.Type == NALUTypeIDR, n.IsKeyFrame(), "nalu %d", i)
	}
}

func TestNALUs_NoStartCode(t *testing.T) {
	assert.Empty(t, Split(nil))
	assert.Empty(t, Split([]byte{}))
	assert.Empty(t, Split([]byte{0x65, 0x88, 0x84, 0x00, 0x02}))
}

func TestNALUs_SkipsEmptySpans(t *testing.T) {
	buf := []byte{
		0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
		0x41, 0x9A,
		0x00, 0x00, 0x01,
	}

	nalus := Split(buf)
	require.Len(t, nalus, 1)
	assert.Equal(t, []byte{0x41, 0x9A}, nalus[0].Data)
	assert.Equal(t, NALUTypeSlice, nalus[0].Type)
}

func TestNALUs_IgnoresLeadingGarbage(t *testing.T) {
	buf := []byte{0xFF, 0xEE, 0x00, 0x00, 0x01, 0x09, 0xF0}

	nalus := Split(buf)
	require.Len(t, nalus, 1)
	assert.Equal(t, NALUTypeAUD, nalus[0].Type)
}

func TestNALUs_PayloadDecoupledFromInput(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01, 0x65, 0x11, 0x22}

	nalus := Split(buf)
	require.Len(t, nalus, 1)

	buf[4] = 0xFF
	assert.Equal(t, []byte{0x65, 0x11, 0x22}, nalus[0].Data)
}

func TestNALUs_StopsEarly(t *testing.T) {
	buf := []byte{
		0x00, 0x00, 0x01, 0x67, 0x01,
		0x00, 0x00, 0x01, 0x68, 0x02,
		0x00, 0x00, 0x01, 0x65, 0x03,
	}

	var seen []NALUType
	for n := range NALUs(buf) {
		seen = append(seen, n.Type)
		if n.Type == NALUTypePPS {
			break
		}
	}
	assert.Equal(t, []NALUType{NALUTypeSPS, NALUTypePPS}, seen)
}

func TestNALUs_CountMatchesUnits(t *testing.T) {
	for count := 0; count < 50; count++ {
		var buf []byte
		for i := 0; i < count; i++ {
			if i%2 == 0 {
				buf = append(buf, 0x00, 0x00, 0x01)
			} else {
				buf = append(buf, 0x00, 0x00, 0x00, 0x01)
			}
			// NAL header with the unit index in the payload
			buf = append(buf, 0x41, byte(i)+1, 0xAB)
		}

		nalus := Split(buf)
		require.Len(t, nalus, count)
		for i, n := range nalus {
			assert.Equal(t, []byte{0x41, byte(i) + 1, 0xAB}, n.Data)
		}
	}
}
