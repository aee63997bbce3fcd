package services

import (
	"sort"
	"time"

	"magpulse/internal/models"
	"magpulse/internal/store"

	"github.com/google/uuid"
)

// relatedCandidateCap bounds the candidate pool for related-post scoring.
const relatedCandidateCap = 20

// Jaccard returns |A∩B| / |A∪B| for two tag sets. Two empty sets score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tag := range a {
		if _, ok := b[tag]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// ContentSimilarity scores two posts on tag overlap (70%) and category
// membership (30%). Symmetric by construction, bounded to [0, 1].
func ContentSimilarity(a, b *models.Post) float64 {
	tagSim := Jaccard(a.TagSet(), b.TagSet())

	catSim := 0.0
	if a.CategoryID != nil && b.CategoryID != nil && *a.CategoryID == *b.CategoryID {
		catSim = 1.0
	}

	return 0.7*tagSim + 0.3*catSim
}

// SimilarityService produces related-post lists from content metadata
// blended with each candidate's current trending score.
type SimilarityService struct {
	content    store.ContentRepository
	engagement store.EngagementRepository
}

// NewSimilarityService creates a new similarity service
func NewSimilarityService(content store.ContentRepository, engagement store.EngagementRepository) *SimilarityService {
	return &SimilarityService{
		content:    content,
		engagement: engagement,
	}
}

// RelatedPosts returns up to limit published posts related to the target,
// scored 60% content similarity and 40% trending. An unknown target yields
// an empty list; there is nothing to recommend.
func (ss *SimilarityService) RelatedPosts(postID uuid.UUID, limit int) ([]ScoredPost, error) {
	target, err := ss.content.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return []ScoredPost{}, nil
	}

	candidates, err := ss.content.RelatedCandidates(target, relatedCandidateCap)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []ScoredPost{}, nil
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, candidate := range candidates {
		ids[i] = candidate.ID
	}
	aggregates, err := ss.engagement.AggregatesFor(ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	scored := make([]ScoredPost, len(candidates))
	for i := range candidates {
		candidate := candidates[i]
		trending := pointTrendingScore(&candidate, aggregates[candidate.ID], now)
		combined := 0.6*ContentSimilarity(target, &candidate) + 0.4*trending
		scored[i] = ScoredPost{
			PostID:      candidate.ID,
			Slug:        candidate.Slug,
			Title:       candidate.Title,
			Score:       combined,
			PublishedAt: candidate.PublishedAt,
		}
	}

	// Ties go to the more recent post.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return laterFirst(scored[i].PublishedAt, scored[j].PublishedAt)
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// pointTrendingScore computes a post's decayed trending score on demand
// from its aggregate and age.
func pointTrendingScore(post *models.Post, aggregate *models.PostAnalytics, now time.Time) float64 {
	if aggregate == nil {
		return 0
	}

	ageInDays := 0.0
	if post.PublishedAt != nil {
		ageInDays = now.Sub(*post.PublishedAt).Hours() / 24
	}

	readMinutes := aggregate.AvgReadTime / 60
	engagements := aggregate.ShareCount + aggregate.CommentCount + aggregate.LikeCount

	return CalculateTrendingScore(float64(aggregate.Views), readMinutes, float64(engagements), ageInDays)
}
