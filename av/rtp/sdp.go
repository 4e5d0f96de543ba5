package rtp

import (
	"strconv"

	"github.com/pion/sdp/v3"
)

// SessionDescription returns an SDP document a receiver can open to play
// the stream (for example `ffplay -protocol_whitelist file,udp,rtp x.sdp`).
// The connection and media lines point at the session's destination.
func (s *Session) SessionDescription(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStarted {
		return nil, ErrSessionNotStarted
	}

	ip := s.remoteAddr.IP.String()
	addrType := "IP4"
	if s.remoteAddr.IP.To4() == nil {
		addrType = "IP6"
	}
	if name == "" {
		name = "h264push"
	}

	media := &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:  "video",
			Port:   sdp.RangedPort{Value: s.remoteAddr.Port},
			Protos: []string{"RTP", "AVP"},
		},
	}
	media = media.WithCodec(PayloadTypeH264, "H264", ClockRate, 0, "packetization-mode=1")
	media = media.WithValueAttribute("framerate", strconv.Itoa(s.fps))

	desc := &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       "-",
			SessionID:      uint64(s.ssrc),
			SessionVersion: uint64(s.stats.StartedAt.Unix()),
			NetworkType:    "IN",
			AddressType:    addrType,
			UnicastAddress: ip,
		},
		SessionName: sdp.SessionName(name),
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: addrType,
			Address:     &sdp.Address{Address: ip},
		},
		TimeDescriptions: []sdp.TimeDescription{
			{Timing: sdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: []*sdp.MediaDescription{media},
	}

	return desc.Marshal()
}
