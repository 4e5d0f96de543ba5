package status

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opd-ai/h264push/av/rtp"
	log "github.com/sirupsen/logrus"
)

// handleRoot reports that the server is alive and the session state.
func (s *Server) handleRoot(c *gin.Context) {
	ret := Ret{
		Code:    Success,
		Message: "h264push is running",
		Data:    gin.H{"state": s.provider.State().String()},
	}
	c.JSON(http.StatusOK, ret)
}

// handleStats returns the session and pipeline counters.
func (s *Server) handleStats(c *gin.Context) {
	st := StreamStatus{
		State:          s.provider.State().String(),
		SSRC:           s.provider.SSRC(),
		SequenceNumber: s.provider.SequenceNumber(),
		Timestamp:      s.provider.Timestamp(),
		Session:        s.provider.Statistics(),
	}
	if addr := s.provider.RemoteAddr(); addr != nil {
		st.Destination = addr.String()
	}
	if s.pipeline != nil {
		stats := s.pipeline.Stats()
		st.Pipeline = &stats
	}
	if s.identity != nil {
		info := s.identity()
		st.Device = &info
	}

	c.JSON(http.StatusOK, Ret{Code: Success, Message: "success", Data: st})
}

// handleSDP serves the session description of the running stream.
func (s *Server) handleSDP(c *gin.Context) {
	desc, err := s.provider.SessionDescription(s.streamName)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, rtp.ErrSessionNotStarted) {
			code = http.StatusServiceUnavailable
		}
		log.WithError(err).Warn("Failed to build session description")
		c.JSON(code, Ret{Code: Failed, Message: err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/sdp", desc)
}

// handleDevices lists the devices the directory knows about.
func (s *Server) handleDevices(c *gin.Context) {
	if s.directory == nil {
		c.JSON(http.StatusNotFound, Ret{Code: Failed, Message: "device directory not configured"})
		return
	}
	c.JSON(http.StatusOK, Ret{Code: Success, Message: "success", Data: s.directory.Devices()})
}
