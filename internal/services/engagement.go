package services

import (
	"fmt"
	"math"
	"sync"
	"time"

	"magpulse/internal/models"
	"magpulse/internal/store"

	"github.com/google/uuid"
)

// TelemetryEvent is a single engagement signal as it enters the aggregator.
// Telemetry delivery is at-least-once; aggregates reflect however many
// events arrive.
type TelemetryEvent struct {
	PostID           uuid.UUID  `json:"post_id"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	EventType        string     `json:"event_type"`
	TimeOnPage       float64    `json:"time_on_page,omitempty"`      // seconds
	ScrollPercentage float64    `json:"scroll_percentage,omitempty"` // 0-100
}

var validEventTypes = map[string]bool{
	models.ActivityPageView: true,
	models.ActivityShare:    true,
	models.ActivityLike:     true,
	models.ActivityComment:  true,
	models.ActivityCopyText: true,
	models.ActivityScroll:   true,
}

// EngagementService maintains the per-post rolling engagement aggregates.
type EngagementService struct {
	engagement store.EngagementRepository

	// Aggregate updates are read-modify-write; serialize them per post so
	// concurrent events for the same post cannot lose updates.
	lockMu sync.Mutex
	locks  map[uuid.UUID]*sync.Mutex
}

// NewEngagementService creates a new engagement service
func NewEngagementService(engagement store.EngagementRepository) *EngagementService {
	return &EngagementService{
		engagement: engagement,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// RecordEvent validates one telemetry event, appends it to the activity log,
// and applies it to the post's aggregate. A missing aggregate row is created
// with zero defaults first.
func (es *EngagementService) RecordEvent(event TelemetryEvent) error {
	if event.PostID == uuid.Nil {
		return fmt.Errorf("telemetry event missing post id")
	}
	if !validEventTypes[event.EventType] {
		return fmt.Errorf("unknown telemetry event type %q", event.EventType)
	}
	if event.ScrollPercentage < 0 {
		event.ScrollPercentage = 0
	}
	if event.ScrollPercentage > 100 {
		event.ScrollPercentage = 100
	}
	if event.TimeOnPage < 0 {
		event.TimeOnPage = 0
	}

	if err := es.engagement.RecordActivity(&models.UserActivity{
		PostID:           event.PostID,
		UserID:           event.UserID,
		ActivityType:     event.EventType,
		TimeOnPage:       event.TimeOnPage,
		ScrollPercentage: event.ScrollPercentage,
		CreatedAt:        time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	lock := es.postLock(event.PostID)
	lock.Lock()
	defer lock.Unlock()

	aggregate, err := es.engagement.GetOrCreateAggregate(event.PostID)
	if err != nil {
		return fmt.Errorf("failed to load aggregate: %w", err)
	}

	applyEvent(aggregate, event)

	if err := es.engagement.SaveAggregate(aggregate); err != nil {
		return fmt.Errorf("failed to save aggregate: %w", err)
	}

	return nil
}

// applyEvent mutates the aggregate for one event.
func applyEvent(aggregate *models.PostAnalytics, event TelemetryEvent) {
	switch event.EventType {
	case models.ActivityPageView:
		aggregate.Views++
	case models.ActivityShare:
		aggregate.ShareCount++
	case models.ActivityLike:
		aggregate.LikeCount++
	case models.ActivityComment:
		aggregate.CommentCount++
	}

	// Scroll depth is a high-water mark.
	if event.ScrollPercentage > aggregate.ScrollDepth {
		aggregate.ScrollDepth = event.ScrollPercentage
	}

	// Two-point running average: recent sessions weigh more than old ones.
	if event.TimeOnPage > 0 {
		if aggregate.AvgReadTime > 0 {
			aggregate.AvgReadTime = (aggregate.AvgReadTime + event.TimeOnPage) / 2
		} else {
			aggregate.AvgReadTime = event.TimeOnPage
		}
	}

	// Engagement score is a high-water mark; a later weak event never
	// lowers it.
	score := engagementScore(aggregate)
	if score > aggregate.EngagementScore {
		aggregate.EngagementScore = score
	}
}

// engagementScore computes the bounded 0-100 composite from the stored
// aggregate values.
func engagementScore(aggregate *models.PostAnalytics) float64 {
	score := aggregate.ScrollDepth*0.4 +
		math.Min(aggregate.AvgReadTime/60, 10)*6 + // 10 minutes of reading = 60 points
		float64(aggregate.ShareCount)*5 +
		float64(aggregate.CommentCount)*3 +
		float64(aggregate.LikeCount)*2
	return math.Min(100, score)
}

// postLock returns the mutex serializing aggregate updates for one post.
func (es *EngagementService) postLock(postID uuid.UUID) *sync.Mutex {
	es.lockMu.Lock()
	defer es.lockMu.Unlock()

	lock, ok := es.locks[postID]
	if !ok {
		lock = &sync.Mutex{}
		es.locks[postID] = lock
	}
	return lock
}
