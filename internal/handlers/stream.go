package handlers

import (
	"log"
	"net/http"

	"magpulse/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Telemetry beacons come from the magazine's own pages; the CMS fronts
	// this service, so origin policy is enforced there.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler accepts batched telemetry over a websocket so pages can keep
// one connection open instead of POSTing every beacon.
type StreamHandler struct {
	engagement *services.EngagementService
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(engagement *services.EngagementService) *StreamHandler {
	return &StreamHandler{engagement: engagement}
}

// Stream handles GET /api/analytics/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade telemetry stream: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req TrackRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Telemetry stream closed unexpectedly: %v", err)
			}
			return
		}

		event, err := eventFromRequest(&req)
		if err != nil {
			// Bad beacons are reported back but do not end the stream.
			conn.WriteJSON(gin.H{"success": false, "error": err.Error()})
			continue
		}

		if err := h.engagement.RecordEvent(*event); err != nil {
			log.Printf("Failed to record streamed event: %v", err)
			conn.WriteJSON(gin.H{"success": false, "error": "failed to record event"})
			continue
		}

		conn.WriteJSON(gin.H{"success": true})
	}
}
