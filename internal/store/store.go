// Package store provides the repository boundary between the scoring
// services and the database. Each scorer receives the repositories it needs
// at construction; nothing in this package is process-global.
package store

import (
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
)

// ContentRepository reads post metadata. All read paths return only
// published posts; an unknown id yields (nil, nil), not an error.
type ContentRepository interface {
	// GetPost returns the post with the given id, or nil if it does not exist.
	GetPost(id uuid.UUID) (*models.Post, error)

	// RelatedCandidates returns up to max published posts, excluding the
	// target, that share the target's category or at least one tag.
	RelatedCandidates(target *models.Post, max int) ([]models.Post, error)

	// PublishedSince returns published posts whose publish date falls in
	// [since, now].
	PublishedSince(since time.Time) ([]models.Post, error)

	// InterestCandidates returns up to max published posts, newest first,
	// that match any of the given tags or categories and are not excluded.
	InterestCandidates(tags []string, categories []uuid.UUID, excluded map[uuid.UUID]struct{}, max int) ([]models.Post, error)

	// BackfillCandidates returns published posts with engagement score of at
	// least minEngagement, ordered by engagement score then recency,
	// skipping excluded ids. categorySlug narrows the result when non-empty.
	BackfillCandidates(excluded map[uuid.UUID]struct{}, minEngagement float64, max int, categorySlug string) ([]models.Post, error)
}

// EngagementRepository owns telemetry rows and the per-post aggregates.
type EngagementRepository interface {
	// RecordActivity appends one telemetry event row.
	RecordActivity(activity *models.UserActivity) error

	// GetOrCreateAggregate returns the aggregate for the post, creating a
	// zero-valued row if none exists yet.
	GetOrCreateAggregate(postID uuid.UUID) (*models.PostAnalytics, error)

	// GetAggregate returns the aggregate for the post, or nil if none exists.
	GetAggregate(postID uuid.UUID) (*models.PostAnalytics, error)

	// SaveAggregate persists a modified aggregate.
	SaveAggregate(aggregate *models.PostAnalytics) error

	// AggregatesFor returns the aggregates for the given posts. Posts
	// without an aggregate row are absent from the map.
	AggregatesFor(postIDs []uuid.UUID) (map[uuid.UUID]*models.PostAnalytics, error)

	// ActivityWindow counts page views and engagement events (shares,
	// comments, likes, text copies) for the post since the given time.
	ActivityWindow(postID uuid.UUID, since time.Time) (views, engagements int64, err error)
}

// TrendingRepository owns the materialized trending score records.
type TrendingRepository interface {
	// Upsert rewrites the record for (post, timeframe) wholesale.
	Upsert(score *models.TrendingScore) error

	// TopTrending returns up to max currently-trending records for the
	// timeframe, highest score first, restricted to published posts and
	// optionally to one category.
	TopTrending(timeframe string, max int, categorySlug string) ([]models.TrendingScore, error)

	// ScoresFor returns the current scores for the given posts in one
	// timeframe. Posts without a record are absent from the map.
	ScoresFor(postIDs []uuid.UUID, timeframe string) (map[uuid.UUID]float64, error)
}

// ReadingHistoryRepository reads the reading surface's history rows.
type ReadingHistoryRepository interface {
	// RecentReads returns up to max most recently read entries for the user
	// since the given time, with each entry's post preloaded.
	RecentReads(userID uuid.UUID, since time.Time, max int) ([]models.ReadingHistory, error)
}
