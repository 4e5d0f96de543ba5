package signaling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/opd-ai/h264push/device"
	"github.com/sirupsen/logrus"
)

// ErrNotConnected is returned by Run when Connect has not succeeded.
var ErrNotConnected = errors.New("signaling client not connected")

const (
	defaultDialTimeout  = 30 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// Client is a presence connection to the signaling server.
type Client struct {
	url          string
	dialer       *websocket.Dialer
	header       http.Header
	dialTimeout  time.Duration
	writeTimeout time.Duration
	repository   *device.Repository

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	onOpen  func()
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithHeader adds headers to the opening handshake.
func WithHeader(h http.Header) Option {
	return func(c *Client) { c.header = h }
}

// WithDialTimeout bounds the opening handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithRepository receives DEVICES pushes from the server.
func WithRepository(r *device.Repository) Option {
	return func(c *Client) { c.repository = r }
}

// NewClient creates a client for a ws:// or wss:// url. It does not dial.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:          url,
		dialer:       websocket.DefaultDialer,
		dialTimeout:  defaultDialTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnOpen sets a callback run after each successful Connect.
func (c *Client) OnOpen(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOpen = fn
}

// Connect dials the server. It returns nil without dialing again while a
// connection is open. The client lock is not held during the handshake; if
// another Connect won the race the new connection is closed.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.url, c.header)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Client.Connect",
			"url":      c.url,
			"error":    err.Error(),
		}).Error("Failed to establish WebSocket connection")
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	onOpen := c.onOpen
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Client.Connect",
		"url":      c.url,
	}).Info("WebSocket connection established")

	if onOpen != nil {
		onOpen()
	}
	return nil
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// GoOnline announces info and sets info.IsOnline to whether the message was
// sent.
func (c *Client) GoOnline(info *device.Info) bool {
	sent := c.send(presence(TypeOnline, info))
	info.IsOnline = sent
	return sent
}

// GoOffline withdraws info. Once the message is sent info.IsOnline is
// cleared; if it could not be sent the device is left as it was.
func (c *Client) GoOffline(info *device.Info) bool {
	sent := c.send(presence(TypeOffline, info))
	if sent {
		info.IsOnline = false
	}
	return sent
}

// send writes msg and reports success. It never blocks on a missing
// connection.
func (c *Client) send(msg Message) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Client.send",
			"type":     msg.Type,
		}).Warn("Not connected, message dropped")
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Client.send",
			"type":     msg.Type,
			"error":    err.Error(),
		}).Error("Failed to send signaling message")
		return false
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Client.send",
		"type":      msg.Type,
		"device_id": msg.DeviceID,
	}).Debug("Sent signaling message")
	return true
}

// Run reads server messages until the connection drops or ctx ends. The
// connection is released either way so a later Connect dials again.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()
	defer c.release(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || c.closedLocally(conn) {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithFields(logrus.Fields{
					"function": "Client.Run",
				}).Info("Server closed the connection")
				return nil
			}
			return fmt.Errorf("signaling connection lost: %w", err)
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg Message) {
	switch msg.Type {
	case TypeDevices:
		if c.repository != nil {
			c.repository.Set(msg.Devices)
		}
		logrus.WithFields(logrus.Fields{
			"function": "Client.handle",
			"devices":  len(msg.Devices),
		}).Debug("Received device list")
	default:
		logrus.WithFields(logrus.Fields{
			"function": "Client.handle",
			"type":     msg.Type,
		}).Debug("Ignoring signaling message")
	}
}

// closedLocally reports whether Close already dropped conn.
func (c *Client) closedLocally(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != conn
}

// release forgets conn if it is still the current connection.
func (c *Client) release(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		c.conn = nil
	}
	_ = conn.Close()
}

// Close sends a close frame and drops the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return conn.Close()
}
