package server

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const streamHeartbeatInterval = 25 * time.Second

// handlePhotoStream serves vote-tally updates over server-sent events so
// open gallery views can refresh counts without waiting for the next poll.
func (h *httpHandler) handlePhotoStream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, cleanup := h.broadcaster.Subscribe(c.Request.Context())
	defer cleanup()

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.EventType, event)
			return true
		case <-heartbeat.C:
			c.SSEvent(realtimeEventHeartbeat, gin.H{"timestamp": time.Now().UTC()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
