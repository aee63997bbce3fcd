package services

import (
	"context"
	"log"
	"math"
	"sync/atomic"
	"time"

	"magpulse/internal/models"
	"magpulse/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// normalizeReference is the engagement volume treated as the soft
	// ceiling; values above it score past 1 rather than clamping.
	normalizeReference = 10000

	// trendingHalfLife is the decay half-life in days.
	trendingHalfLife = 7.0

	// Recompute reference constants.
	recomputeWindow       = 24 * time.Hour
	viewsReference        = 100.0
	readTimeReference     = 300.0 // 5 minutes, seconds
	scrollReference       = 100.0
	trendingThreshold     = 10.0
	backfillMinEngagement = 20.0

	// defaultRecomputeWorkers bounds concurrent per-post upserts.
	defaultRecomputeWorkers = 8
)

// Normalize maps a raw count into [0, ~1] on a log scale. Monotonically
// increasing with Normalize(0) = 0.
func Normalize(value float64) float64 {
	return math.Log1p(value) / math.Log1p(normalizeReference)
}

// Decay halves a score for every seven days of age. Decay(0) = 1.
func Decay(ageInDays float64) float64 {
	return math.Pow(0.5, ageInDays/trendingHalfLife)
}

// CalculateTrendingScore combines log-normalized views (50%), read minutes
// (30%), and engagement events (20%), decayed by item age.
func CalculateTrendingScore(views, readMinutes, engagements, ageInDays float64) float64 {
	rawScore := 0.5*Normalize(views) + 0.3*Normalize(readMinutes) + 0.2*Normalize(engagements)
	return rawScore * Decay(ageInDays)
}

// TrendingService owns the trending score lifecycle: periodic batch
// recomputation and the ranked read path with high-engagement backfill.
type TrendingService struct {
	content    store.ContentRepository
	engagement store.EngagementRepository
	trending   store.TrendingRepository
	workers    int
}

// NewTrendingService creates a new trending service
func NewTrendingService(content store.ContentRepository, engagement store.EngagementRepository, trending store.TrendingRepository) *TrendingService {
	return &TrendingService{
		content:    content,
		engagement: engagement,
		trending:   trending,
		workers:    defaultRecomputeWorkers,
	}
}

// RecomputeTrending rescores every published post inside the timeframe's
// lookback window and upserts one record per post. Each post is independent;
// a failure is logged and skipped, and only successfully processed posts are
// counted. The job is idempotent and safe to re-run at any time.
func (ts *TrendingService) RecomputeTrending(ctx context.Context, timeframe string) (int, error) {
	since := time.Now().Add(-models.TimeframeDuration(timeframe))
	posts, err := ts.content.PublishedSince(since)
	if err != nil {
		return 0, err
	}

	windowStart := time.Now().Add(-recomputeWindow)

	var processed int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(ts.workers)

	for i := range posts {
		post := posts[i]
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			if err := ts.recomputePost(&post, timeframe, windowStart); err != nil {
				log.Printf("Failed to recompute trending for post %s: %v", post.ID, err)
				return nil // isolate the failure, keep the batch going
			}
			atomic.AddInt64(&processed, 1)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return int(atomic.LoadInt64(&processed)), err
	}

	log.Printf("Trending recompute (%s): %d of %d posts processed", timeframe, processed, len(posts))
	return int(processed), nil
}

// recomputePost scores one post from its 24h activity window and current
// aggregate, and rewrites its trending record.
func (ts *TrendingService) recomputePost(post *models.Post, timeframe string, windowStart time.Time) error {
	recentViews, recentEngagements, err := ts.engagement.ActivityWindow(post.ID, windowStart)
	if err != nil {
		return err
	}

	var avgReadTime, scrollDepth float64
	aggregate, err := ts.engagement.GetAggregate(post.ID)
	if err != nil {
		return err
	}
	if aggregate != nil {
		avgReadTime = aggregate.AvgReadTime
		scrollDepth = aggregate.ScrollDepth
	}

	viewsWeight := math.Min(float64(recentViews)/viewsReference, 1)
	engagementWeight := float64(recentEngagements) * 2
	timeWeight := math.Min(avgReadTime/readTimeReference, 1)
	scrollWeight := scrollDepth / scrollReference

	combinedScore := (viewsWeight + engagementWeight + timeWeight + scrollWeight) * 25

	return ts.trending.Upsert(&models.TrendingScore{
		PostID:              post.ID,
		Timeframe:           timeframe,
		Score:               combinedScore,
		ViewsInWindow:       recentViews,
		EngagementsInWindow: recentEngagements,
		IsCurrentlyTrending: combinedScore > trendingThreshold,
		UpdatedAt:           time.Now(),
	})
}

// TrendingPosts returns up to limit ranked posts for the timeframe,
// optionally narrowed to one category.
func (ts *TrendingService) TrendingPosts(timeframe string, limit int, categorySlug string) ([]ScoredPost, error) {
	return ts.TrendingPostsExcluding(timeframe, limit, categorySlug, nil)
}

// TrendingPostsExcluding is TrendingPosts with an exclusion set, used by the
// personalized composer to avoid re-recommending read posts. When fewer than
// limit posts are currently trending, the list is backfilled with
// high-engagement published posts marked as not currently trending.
func (ts *TrendingService) TrendingPostsExcluding(timeframe string, limit int, categorySlug string, excluded map[uuid.UUID]struct{}) ([]ScoredPost, error) {
	records, err := ts.trending.TopTrending(timeframe, limit+len(excluded), categorySlug)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredPost, 0, limit)
	seen := make(map[uuid.UUID]struct{}, limit)
	for _, record := range records {
		if len(results) >= limit {
			break
		}
		if _, skip := excluded[record.PostID]; skip {
			continue
		}
		results = append(results, ScoredPost{
			PostID:              record.PostID,
			Slug:                record.Post.Slug,
			Title:               record.Post.Title,
			Score:               record.Score,
			IsCurrentlyTrending: true,
			PublishedAt:         record.Post.PublishedAt,
		})
		seen[record.PostID] = struct{}{}
	}

	if len(results) >= limit {
		return results, nil
	}

	// Backfill with pseudo-trending posts: published, engagement score of at
	// least 20, best engagement first.
	skip := make(map[uuid.UUID]struct{}, len(seen)+len(excluded))
	for id := range seen {
		skip[id] = struct{}{}
	}
	for id := range excluded {
		skip[id] = struct{}{}
	}

	backfill, err := ts.content.BackfillCandidates(skip, backfillMinEngagement, limit-len(results), categorySlug)
	if err != nil {
		return nil, err
	}

	for _, post := range backfill {
		score := 0.0
		if post.Analytics != nil {
			score = post.Analytics.EngagementScore
		}
		results = append(results, ScoredPost{
			PostID:              post.ID,
			Slug:                post.Slug,
			Title:               post.Title,
			Score:               score,
			IsCurrentlyTrending: false,
			PublishedAt:         post.PublishedAt,
		})
	}

	return results, nil
}
