package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// UDPTransport implements send-only UDP communication for RTP.
// It satisfies the Transport interface.
type UDPTransport struct {
	conn         net.PacketConn
	writeTimeout time.Duration
	mu           sync.RWMutex
	closed       bool
}

// UDPOption configures a UDPTransport.
type UDPOption func(*UDPTransport)

// WithWriteTimeout bounds how long Send may block on a full socket buffer.
// Zero disables the deadline.
func WithWriteTimeout(d time.Duration) UDPOption {
	return func(t *UDPTransport) {
		t.writeTimeout = d
	}
}

// NewUDPTransport binds a UDP socket on listenAddr.
func NewUDPTransport(listenAddr string, opts ...UDPOption) (*UDPTransport, error) {
	if listenAddr == "" {
		listenAddr = ":0"
	}

	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "NewUDPTransport",
			"listen_addr": listenAddr,
			"error":       err.Error(),
		}).Error("Failed to bind UDP socket")
		return nil, err
	}

	t := &UDPTransport{conn: conn}
	for _, opt := range opts {
		opt(t)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewUDPTransport",
		"local_addr":    conn.LocalAddr().String(),
		"write_timeout": t.writeTimeout.String(),
	}).Debug("UDP transport bound")

	return t, nil
}

// NewUDPFactory returns a Factory producing UDP transports with opts applied.
func NewUDPFactory(opts ...UDPOption) Factory {
	return func(listenAddr string) (Transport, error) {
		t, err := NewUDPTransport(listenAddr, opts...)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Send writes data as a single datagram to addr.
func (t *UDPTransport) Send(data []byte, addr net.Addr) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return ErrTransportClosed
	}

	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	_, err := t.conn.WriteTo(data, addr)
	return err
}

// Close shuts down the transport. Calling it more than once is safe.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

// LocalAddr returns the local address the transport is bound to.
func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}
