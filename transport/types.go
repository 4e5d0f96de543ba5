package transport

import (
	"errors"
	"net"
)

// ErrTransportClosed is returned by Send after Close.
var ErrTransportClosed = errors.New("transport closed")

// Transport defines the interface for datagram transports used by the RTP session.
// This abstraction lets tests substitute a recording transport for a real socket.
type Transport interface {
	// Send sends one datagram to the specified address.
	Send(data []byte, addr net.Addr) error

	// Close shuts down the transport.
	Close() error

	// LocalAddr returns the local address the transport is bound to.
	LocalAddr() net.Addr
}

// Factory opens a Transport bound to listenAddr ("" or ":0" for an ephemeral port).
type Factory func(listenAddr string) (Transport, error)
