package rtp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/h264push/av/h264"
	"github.com/opd-ai/h264push/limits"
	"github.com/opd-ai/h264push/transport"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateUninitialized is the state of a session that was never started.
	StateUninitialized State = iota
	// StateStarted means the socket is open and SendNALU is accepted.
	StateStarted
	// StateStopped means the socket was closed. Start may be called again.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Statistics tracks what a session has transmitted since its last Start.
type Statistics struct {
	PacketsSent     uint64    `json:"packets_sent"`
	BytesSent       uint64    `json:"bytes_sent"`
	NALUsSent       uint64    `json:"nalus_sent"`
	FragmentedNALUs uint64    `json:"fragmented_nalus"`
	KeyFrames       uint64    `json:"key_frames"`
	SendErrors      uint64    `json:"send_errors"`
	StartedAt       time.Time `json:"started_at"`
}

// Session owns the state of one H.264 RTP stream: sequence number,
// timestamp, SSRC, destination and the UDP socket.
//
// SendNALU calls serialize on their own mutex, so the session has a single
// writer at any time even if several goroutines hold it. Packets of one NAL
// unit are never interleaved with packets of another. Stream state sits
// behind a second mutex that is not held during socket writes, so the
// getters do not wait on a slow send.
type Session struct {
	sendMu sync.Mutex

	mu         sync.Mutex
	state      State
	generation uint64

	ssrc           uint32
	sequenceNumber uint16
	timestamp      uint32
	timestampStep  uint32
	fps            int

	remoteAddr *net.UDPAddr
	transport  transport.Transport

	mtu          int
	listenAddr   string
	newTransport transport.Factory
	resolver     transport.Resolver
	ssrcProvider SSRCProvider
	timeProvider TimeProvider

	stats Statistics
}

// Option configures a Session.
type Option func(*Session)

// WithTransportFactory overrides how the session opens its socket.
func WithTransportFactory(f transport.Factory) Option {
	return func(s *Session) { s.newTransport = f }
}

// WithResolver overrides destination resolution.
func WithResolver(r transport.Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithSSRCProvider overrides SSRC generation.
func WithSSRCProvider(p SSRCProvider) Option {
	return func(s *Session) { s.ssrcProvider = p }
}

// WithTimeProvider overrides the clock used for statistics.
func WithTimeProvider(p TimeProvider) Option {
	return func(s *Session) { s.timeProvider = p }
}

// WithMTU sets the largest RTP packet size.
func WithMTU(mtu int) Option {
	return func(s *Session) { s.mtu = mtu }
}

// WithListenAddr sets the local address the socket binds to.
func WithListenAddr(addr string) Option {
	return func(s *Session) { s.listenAddr = addr }
}

// NewSession creates an unstarted RTP session.
//
// Parameters:
//   - opts: optional overrides; defaults are a UDP socket on an ephemeral
//     port, the system resolver, a random SSRC and limits.DefaultMTU
//
// Returns:
//   - *Session: The new session in StateUninitialized
//   - error: An invalid MTU
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		mtu:          limits.DefaultMTU,
		listenAddr:   ":0",
		newTransport: transport.NewUDPFactory(),
		resolver:     transport.NewNetResolver(),
		ssrcProvider: RandomSSRCProvider{},
		timeProvider: DefaultTimeProvider{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := limits.ValidateMTU(s.mtu); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewSession",
			"mtu":      s.mtu,
			"error":    err.Error(),
		}).Error("Invalid MTU")
		return nil, err
	}

	return s, nil
}

// Start resolves the destination, resets the stream state, picks a new SSRC
// and opens the UDP socket.
//
// Parameters:
//   - ctx: Bounds destination resolution
//   - host: Destination IP address or host name
//   - port: Destination UDP port
//   - fps: Frame rate; the timestamp advances by 90000/fps per NAL unit
//
// Returns:
//   - error: ErrSessionAlreadyStarted, ErrInvalidFrameRate, *ResolutionError
//     or *SocketError
func (s *Session) Start(ctx context.Context, host string, port, fps int) error {
	logrus.WithFields(logrus.Fields{
		"function": "Session.Start",
		"host":     host,
		"port":     port,
		"fps":      fps,
	}).Info("Starting RTP session")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStarted {
		return ErrSessionAlreadyStarted
	}
	if fps <= 0 || fps > ClockRate {
		return fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	}

	addr, err := s.resolver.ResolveUDPAddr(ctx, host, port)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Session.Start",
			"host":     host,
			"port":     port,
			"error":    err.Error(),
		}).Error("Failed to resolve destination")
		return &ResolutionError{Host: host, Port: port, Err: err}
	}

	ssrc, err := s.ssrcProvider.GenerateSSRC()
	if err != nil {
		return fmt.Errorf("failed to generate SSRC: %w", err)
	}

	tr, err := s.newTransport(s.listenAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "Session.Start",
			"listen_addr": s.listenAddr,
			"error":       err.Error(),
		}).Error("Failed to open UDP socket")
		return &SocketError{ListenAddr: s.listenAddr, Err: err}
	}

	s.remoteAddr = addr
	s.transport = tr
	s.fps = fps
	s.timestampStep = uint32(ClockRate / fps)
	s.sequenceNumber = 0
	s.timestamp = 0
	s.ssrc = ssrc
	s.stats = Statistics{StartedAt: s.timeProvider.Now()}
	s.generation++
	s.state = StateStarted

	logrus.WithFields(logrus.Fields{
		"function":       "Session.Start",
		"remote_addr":    addr.String(),
		"local_addr":     tr.LocalAddr().String(),
		"ssrc":           ssrc,
		"timestamp_step": s.timestampStep,
		"mtu":            s.mtu,
	}).Info("RTP session started")

	return nil
}

// SendNALU packetizes one NAL unit and transmits it.
//
// Units up to MTU-12 bytes go out as one packet; larger units as FU-A
// fragments sharing one timestamp. There is no upper size bound. The
// sequence number advances once per transmitted packet and the timestamp
// once per NAL unit.
//
// When a datagram fails the remaining fragments of the unit are abandoned and
// a *SendError is returned. The failed packet does not consume a sequence
// number, the timestamp still advances and the session stays started.
//
// Returns:
//   - error: ErrSessionNotStarted, limits.ErrNALUEmpty or *SendError
func (s *Session) SendNALU(nalu h264.NALU) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.state != StateStarted {
		s.mu.Unlock()
		return ErrSessionNotStarted
	}
	if err := limits.ValidateNALU(nalu.Data); err != nil {
		s.mu.Unlock()
		return err
	}
	out := outgoing{
		generation: s.generation,
		transport:  s.transport,
		remoteAddr: s.remoteAddr,
		ssrc:       s.ssrc,
		sequence:   s.sequenceNumber,
		timestamp:  s.timestamp,
	}
	s.mu.Unlock()

	payloads := Payloads(nalu.Data, s.mtu)

	logrus.WithFields(logrus.Fields{
		"function":  "Session.SendNALU",
		"nalu_type": nalu.Type.String(),
		"size":      nalu.Len(),
		"packets":   len(payloads),
		"sequence":  out.sequence,
		"timestamp": out.timestamp,
	}).Debug("Sending NAL unit")

	sendErr := s.sendPayloads(&out, payloads)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != out.generation {
		return sendErr
	}

	s.timestamp += s.timestampStep

	if sendErr != nil {
		return sendErr
	}

	s.stats.NALUsSent++
	if len(payloads) > 1 {
		s.stats.FragmentedNALUs++
	}
	if nalu.IsKeyFrame() {
		s.stats.KeyFrames++
	}
	return nil
}

// outgoing is the stream state one SendNALU call transmits with. It is taken
// under the state lock so the socket write itself runs without it.
type outgoing struct {
	generation uint64
	transport  transport.Transport
	remoteAddr *net.UDPAddr
	ssrc       uint32
	sequence   uint16
	timestamp  uint32
}

// sendPayloads wraps each payload in an RTP header and sends it. The marker
// bit is set on the last packet, which for a single NAL unit is the only one.
func (s *Session) sendPayloads(out *outgoing, payloads [][]byte) error {
	last := len(payloads) - 1
	for i, payload := range payloads {
		packet := &rtp.Packet{
			Header: rtp.Header{
				Version:        Version,
				Padding:        false,
				Extension:      false,
				Marker:         i == last,
				PayloadType:    PayloadTypeH264,
				SequenceNumber: out.sequence,
				Timestamp:      out.timestamp,
				SSRC:           out.ssrc,
			},
			Payload: payload,
		}

		data, err := packet.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal RTP packet: %w", err)
		}

		if err := out.transport.Send(data, out.remoteAddr); err != nil {
			s.recordSendError(out.generation)
			logrus.WithFields(logrus.Fields{
				"function":  "Session.sendPayloads",
				"sequence":  out.sequence,
				"fragment":  i,
				"fragments": len(payloads),
				"error":     err.Error(),
			}).Error("Failed to send RTP packet")
			return &SendError{
				SequenceNumber: out.sequence,
				Fragment:       i,
				Fragments:      len(payloads),
				Err:            err,
			}
		}

		out.sequence++
		s.recordPacket(out.generation, out.sequence, len(data))
	}
	return nil
}

// recordPacket publishes a transmitted packet unless the session was
// restarted or stopped while it was on the wire.
func (s *Session) recordPacket(generation uint64, next uint16, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.sequenceNumber = next
	s.stats.PacketsSent++
	s.stats.BytesSent += uint64(size)
}

func (s *Session) recordSendError(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		s.stats.SendErrors++
	}
}

// Send packetizes raw NAL unit bytes (start code already stripped).
func (s *Session) Send(data []byte) error {
	return s.SendNALU(h264.NewNALU(data))
}

// Stop closes the socket and marks the session stopped. It is a no-op on a
// session that is not started, so calling it twice is safe. A SendNALU in
// flight fails with a *SendError once the socket is closed.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateStarted {
		s.mu.Unlock()
		return nil
	}
	tr := s.transport
	s.transport = nil
	s.generation++
	s.state = StateStopped
	stats := s.stats
	ssrc := s.ssrc
	s.mu.Unlock()

	var err error
	if tr != nil {
		err = tr.Close()
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Session.Stop",
		"ssrc":         ssrc,
		"packets_sent": stats.PacketsSent,
		"send_errors":  stats.SendErrors,
	}).Info("RTP session stopped")

	if err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SSRC returns the synchronization source of the current stream.
func (s *Session) SSRC() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ssrc
}

// SequenceNumber returns the sequence number of the next packet.
func (s *Session) SequenceNumber() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequenceNumber
}

// Timestamp returns the RTP timestamp of the next NAL unit.
func (s *Session) Timestamp() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timestamp
}

// TimestampStep returns the per-NAL-unit timestamp increment.
func (s *Session) TimestampStep() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timestampStep
}

// MTU returns the largest RTP packet size the session emits.
func (s *Session) MTU() int {
	return s.mtu
}

// RemoteAddr returns the destination, or nil before the first Start.
func (s *Session) RemoteAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remoteAddr == nil {
		return nil
	}
	return s.remoteAddr
}

// LocalAddr returns the bound socket address while started.
func (s *Session) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil
	}
	return s.transport.LocalAddr()
}

// Statistics returns a snapshot of the transmit counters.
func (s *Session) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
