package models

import (
	"time"

	"github.com/google/uuid"
)

// Trending timeframe labels.
const (
	Timeframe24h = "24h"
	Timeframe7d  = "7d"
	Timeframe30d = "30d"
)

// TimeframeDuration maps a timeframe label to its lookback window. Unknown
// labels fall back to 24 hours.
func TimeframeDuration(timeframe string) time.Duration {
	switch timeframe {
	case Timeframe7d:
		return 7 * 24 * time.Hour
	case Timeframe30d:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// TrendingScore is the materialized trending record for one post within one
// timeframe. Each recompute rewrites the row wholesale; stale rows stay
// readable until the next cycle touches them.
type TrendingScore struct {
	ID     uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PostID uuid.UUID `json:"post_id" db:"post_id" gorm:"not null;uniqueIndex:idx_trending_post_timeframe"`

	Timeframe string  `json:"timeframe" db:"timeframe" gorm:"not null;uniqueIndex:idx_trending_post_timeframe;index"`
	Score     float64 `json:"score" db:"score" gorm:"default:0;index"`

	ViewsInWindow       int64 `json:"views_in_window" db:"views_in_window" gorm:"default:0"`
	EngagementsInWindow int64 `json:"engagements_in_window" db:"engagements_in_window" gorm:"default:0"`

	IsCurrentlyTrending bool `json:"is_currently_trending" db:"is_currently_trending" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Post Post `json:"post,omitempty" gorm:"foreignKey:PostID;references:ID"`
}

// TableName sets the table name for the TrendingScore model
func (TrendingScore) TableName() string {
	return "trending_scores"
}
