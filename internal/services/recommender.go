package services

import (
	"context"
	"sort"
	"time"

	"magpulse/internal/models"
	"magpulse/internal/store"

	"github.com/google/uuid"
)

// ScoredPost is one ranked entry in a recommendation response.
type ScoredPost struct {
	PostID              uuid.UUID  `json:"post_id"`
	Slug                string     `json:"slug"`
	Title               string     `json:"title"`
	Score               float64    `json:"score"`
	IsCurrentlyTrending bool       `json:"is_currently_trending"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
}

// laterFirst orders publish timestamps newest first, with nil last.
func laterFirst(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

// RecommenderService is the top-level composer over the similarity,
// trending, and profile services.
type RecommenderService struct {
	content    store.ContentRepository
	engagement store.EngagementRepository
	trending   store.TrendingRepository
	similarity *SimilarityService
	scorer     *TrendingService
	profiles   *ProfileService
}

// NewRecommenderService creates a new recommender service
func NewRecommenderService(
	content store.ContentRepository,
	engagement store.EngagementRepository,
	trending store.TrendingRepository,
	similarity *SimilarityService,
	scorer *TrendingService,
	profiles *ProfileService,
) *RecommenderService {
	return &RecommenderService{
		content:    content,
		engagement: engagement,
		trending:   trending,
		similarity: similarity,
		scorer:     scorer,
		profiles:   profiles,
	}
}

// RelatedPosts returns posts related to the target by content similarity
// blended with current trending.
func (rs *RecommenderService) RelatedPosts(postID uuid.UUID, limit int) ([]ScoredPost, error) {
	return rs.similarity.RelatedPosts(postID, limit)
}

// TrendingPosts returns the current trending list for a timeframe.
func (rs *RecommenderService) TrendingPosts(timeframe string, limit int, categorySlug string) ([]ScoredPost, error) {
	return rs.scorer.TrendingPosts(timeframe, limit, categorySlug)
}

// RecomputeTrending triggers a batch rescore for a timeframe and returns the
// number of posts processed.
func (rs *RecommenderService) RecomputeTrending(ctx context.Context, timeframe string) (int, error) {
	return rs.scorer.RecomputeTrending(ctx, timeframe)
}

// ForYou returns a personalized feed for the user. Anonymous readers get the
// 24h trending list unchanged. Known readers get recent posts matching their
// top tags and categories, topped up with trending posts when candidates run
// short, with everything they already read excluded.
func (rs *RecommenderService) ForYou(userID *uuid.UUID, limit int) ([]ScoredPost, error) {
	if userID == nil {
		return rs.scorer.TrendingPosts(models.Timeframe24h, limit, "")
	}

	profile, err := rs.profiles.BuildProfile(*userID)
	if err != nil {
		return nil, err
	}

	candidates, err := rs.content.InterestCandidates(
		profile.TopTags, profile.TopCategories, profile.ExcludedIDs, 2*limit)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredPost, 0, len(candidates))
	chosen := make(map[uuid.UUID]struct{}, len(candidates))
	for _, post := range candidates {
		results = append(results, ScoredPost{
			PostID:      post.ID,
			Slug:        post.Slug,
			Title:       post.Title,
			PublishedAt: post.PublishedAt,
		})
		chosen[post.ID] = struct{}{}
	}

	// Not enough interest matches: top up from trending, still excluding
	// everything already read or already chosen.
	if len(results) < limit {
		excluded := make(map[uuid.UUID]struct{}, len(chosen)+len(profile.ExcludedIDs))
		for id := range chosen {
			excluded[id] = struct{}{}
		}
		for id := range profile.ExcludedIDs {
			excluded[id] = struct{}{}
		}

		trending, err := rs.scorer.TrendingPostsExcluding(models.Timeframe24h, limit-len(results), "", excluded)
		if err != nil {
			return nil, err
		}
		results = append(results, trending...)
	}

	if err := rs.scoreResults(results); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return laterFirst(results[i].PublishedAt, results[j].PublishedAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scoreResults fills in each entry's current score: the 24h trending score
// when a record exists, otherwise the post's engagement score. Entries that
// already carry a score (trending top-ups) keep it.
func (rs *RecommenderService) scoreResults(results []ScoredPost) error {
	ids := make([]uuid.UUID, 0, len(results))
	for _, result := range results {
		if result.Score == 0 {
			ids = append(ids, result.PostID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	trendingScores, err := rs.trending.ScoresFor(ids, models.Timeframe24h)
	if err != nil {
		return err
	}

	for i := range results {
		if results[i].Score != 0 {
			continue
		}
		if score, ok := trendingScores[results[i].PostID]; ok {
			results[i].Score = score
			results[i].IsCurrentlyTrending = score > trendingThreshold
			continue
		}
		aggregate, err := rs.engagement.GetAggregate(results[i].PostID)
		if err != nil {
			return err
		}
		if aggregate != nil {
			results[i].Score = aggregate.EngagementScore
		}
	}
	return nil
}
