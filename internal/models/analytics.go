package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity types recorded against posts. The aggregator only counts a subset;
// the rest still land in user_activities for windowed trending math.
const (
	ActivityPageView = "PAGE_VIEW"
	ActivityShare    = "SHARE"
	ActivityLike     = "LIKE"
	ActivityComment  = "COMMENT"
	ActivityCopyText = "COPY_TEXT"
	ActivityScroll   = "SCROLL"
)

// EngagementActivityTypes are the activity types counted as engagements in
// the trending recompute window.
var EngagementActivityTypes = []string{ActivityShare, ActivityComment, ActivityLike, ActivityCopyText}

// UserActivity is a single telemetry event for a post. Rows are append-only
// and at-least-once; the aggregates reflect however many events arrive.
type UserActivity struct {
	ID     uuid.UUID  `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PostID uuid.UUID  `json:"post_id" db:"post_id" gorm:"not null;index:idx_activities_post_time"`
	UserID *uuid.UUID `json:"user_id" db:"user_id" gorm:"index"`

	ActivityType string `json:"activity_type" db:"activity_type" gorm:"not null;index"`

	// Optional event payload
	TimeOnPage       float64 `json:"time_on_page" db:"time_on_page" gorm:"default:0"`             // seconds
	ScrollPercentage float64 `json:"scroll_percentage" db:"scroll_percentage" gorm:"default:0"`   // 0-100

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime;index:idx_activities_post_time"`

	// Relationships
	Post Post `json:"post,omitempty" gorm:"foreignKey:PostID;references:ID"`
}

// PostAnalytics is the rolling engagement aggregate for one post, keyed 1:1
// by post id. Created lazily on the first event, mutated only by the
// engagement aggregator, never deleted while the post exists.
type PostAnalytics struct {
	ID     uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PostID uuid.UUID `json:"post_id" db:"post_id" gorm:"uniqueIndex;not null"`

	Views        int64 `json:"views" db:"views" gorm:"default:0"`
	ShareCount   int64 `json:"share_count" db:"share_count" gorm:"default:0"`
	CommentCount int64 `json:"comment_count" db:"comment_count" gorm:"default:0"`
	LikeCount    int64 `json:"like_count" db:"like_count" gorm:"default:0"`

	// High-water marks: ScrollDepth and EngagementScore only ever go up.
	ScrollDepth     float64 `json:"scroll_depth" db:"scroll_depth" gorm:"default:0"`         // 0-100
	AvgReadTime     float64 `json:"avg_read_time" db:"avg_read_time" gorm:"default:0"`       // seconds
	EngagementScore float64 `json:"engagement_score" db:"engagement_score" gorm:"default:0"` // 0-100

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Post Post `json:"post,omitempty" gorm:"foreignKey:PostID;references:ID"`
}

// TableName methods
func (UserActivity) TableName() string {
	return "user_activities"
}

func (PostAnalytics) TableName() string {
	return "post_analytics"
}
