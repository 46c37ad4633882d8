package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

// handleEvents streams hub events as server-sent events until the client leaves.
func (s *Server) handleEvents(c *gin.Context) {
	ch, cancel := s.hub.Subscribe()
	defer cancel()
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		}
	})
}
