package status

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opd-ai/h264push/av/rtp"
	"github.com/opd-ai/h264push/device"
	"github.com/opd-ai/h264push/streamer"
	"github.com/sirupsen/logrus"
)

const (
	Success int = 0
	Failed  int = -1
)

const shutdownTimeout = 5 * time.Second

// Ret is the response envelope.
type Ret struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Provider is the stream the server reports on. *rtp.Session implements it.
type Provider interface {
	State() rtp.State
	SSRC() uint32
	SequenceNumber() uint16
	Timestamp() uint32
	RemoteAddr() net.Addr
	Statistics() rtp.Statistics
	SessionDescription(name string) ([]byte, error)
}

// PipelineStats reports pipeline counters. *streamer.Pipeline implements it.
type PipelineStats interface {
	Stats() streamer.Stats
}

// Directory lists known devices. *device.Repository implements it.
type Directory interface {
	Devices() []device.Info
}

// StreamStatus is the data of GET /stats.
type StreamStatus struct {
	State          string          `json:"state"`
	SSRC           uint32          `json:"ssrc"`
	SequenceNumber uint16          `json:"sequence_number"`
	Timestamp      uint32          `json:"timestamp"`
	Destination    string          `json:"destination,omitempty"`
	Session        rtp.Statistics  `json:"session"`
	Pipeline       *streamer.Stats `json:"pipeline,omitempty"`
	Device         *device.Info    `json:"device,omitempty"`
}

// Server is the status HTTP server.
type Server struct {
	addr       string
	router     *gin.Engine
	provider   Provider
	pipeline   PipelineStats
	directory  Directory
	identity   func() device.Info
	streamName string
}

// Option configures a Server.
type Option func(*Server)

// WithPipeline adds pipeline counters to /stats.
func WithPipeline(p PipelineStats) Option {
	return func(s *Server) { s.pipeline = p }
}

// WithDirectory enables /devices.
func WithDirectory(d Directory) Option {
	return func(s *Server) { s.directory = d }
}

// WithIdentity adds this device to /stats.
func WithIdentity(fn func() device.Info) Option {
	return func(s *Server) { s.identity = fn }
}

// WithStreamName sets the SDP session name served on /stream.sdp.
func WithStreamName(name string) Option {
	return func(s *Server) { s.streamName = name }
}

// NewServer creates a server for addr (for example ":8080") reporting on
// provider. It does not listen until Run.
func NewServer(addr string, provider Provider, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     addr,
		router:   gin.New(),
		provider: provider,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery(), requestLogger())
	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/stats", s.handleStats)
	s.router.GET("/stream.sdp", s.handleSDP)
	s.router.GET("/devices", s.handleDevices)
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"function": "Server.Run",
			"addr":     s.addr,
		}).Info("Status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Server.Run",
	}).Info("Status server stopped")
	return nil
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("HTTP request")
	}
}
