package handlers

import (
	"net/http"

	"magpulse/internal/models"
	"magpulse/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// activityTypeMap translates client-side event names into activity types.
var activityTypeMap = map[string]string{
	"page_view":      models.ActivityPageView,
	"article_view":   models.ActivityPageView,
	"scroll":         models.ActivityScroll,
	"article_scroll": models.ActivityScroll,
	"share":          models.ActivityShare,
	"article_share":  models.ActivityShare,
	"comment":        models.ActivityComment,
	"like":           models.ActivityLike,
	"article_vote":   models.ActivityLike,
	"copy":           models.ActivityCopyText,
	"content_copy":   models.ActivityCopyText,
}

// TrackRequest is the telemetry payload accepted by the track endpoints.
type TrackRequest struct {
	PostID           string  `json:"post_id" binding:"required"`
	Type             string  `json:"type" binding:"required"`
	UserID           string  `json:"user_id"`
	TimeOnPage       float64 `json:"time_on_page"`
	ScrollPercentage float64 `json:"scroll_percentage"`
}

// TrackHandler handles telemetry ingestion
type TrackHandler struct {
	engagement *services.EngagementService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(engagement *services.EngagementService) *TrackHandler {
	return &TrackHandler{engagement: engagement}
}

// Track handles POST /api/analytics/track
func (h *TrackHandler) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tracking payload", "details": err.Error()})
		return
	}

	event, err := eventFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engagement.RecordEvent(*event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// eventFromRequest validates and converts a raw tracking payload.
func eventFromRequest(req *TrackRequest) (*services.TelemetryEvent, error) {
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		return nil, &trackError{"invalid post id"}
	}

	eventType, ok := activityTypeMap[req.Type]
	if !ok {
		// Already-canonical types pass through.
		eventType = req.Type
	}

	event := services.TelemetryEvent{
		PostID:           postID,
		EventType:        eventType,
		TimeOnPage:       req.TimeOnPage,
		ScrollPercentage: req.ScrollPercentage,
	}

	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, &trackError{"invalid user id"}
		}
		event.UserID = &userID
	}

	return &event, nil
}

type trackError struct {
	msg string
}

func (e *trackError) Error() string {
	return e.msg
}
