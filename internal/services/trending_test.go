package services

import (
	"context"
	"testing"
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(0))

	// Monotonically increasing.
	previous := 0.0
	for _, value := range []float64{1, 10, 100, 1000, 10000, 100000} {
		current := Normalize(value)
		assert.Greater(t, current, previous)
		previous = current
	}

	// The reference point maps to 1; the ceiling is soft.
	assert.InDelta(t, 1.0, Normalize(10000), 1e-9)
	assert.Greater(t, Normalize(100000), 1.0)
}

func TestDecay(t *testing.T) {
	assert.InDelta(t, 1.0, Decay(0), 1e-9)
	assert.InDelta(t, 0.5, Decay(7), 1e-9)
	assert.InDelta(t, 0.25, Decay(14), 1e-9)

	// Strictly decreasing in age.
	previous := Decay(0)
	for age := 1.0; age <= 30; age++ {
		current := Decay(age)
		assert.Less(t, current, previous)
		previous = current
	}
}

func TestCalculateTrendingScore(t *testing.T) {
	// No signals at all scores zero regardless of age.
	assert.Equal(t, 0.0, CalculateTrendingScore(0, 0, 0, 0))

	// With inputs fixed, the score strictly decreases as age increases.
	previous := CalculateTrendingScore(500, 30, 12, 0)
	assert.Greater(t, previous, 0.0)
	for age := 1.0; age <= 28; age += 1 {
		current := CalculateTrendingScore(500, 30, 12, age)
		assert.Less(t, current, previous)
		previous = current
	}
}

// recordViews writes n page-view activities for the post.
func recordViews(t *testing.T, svc *EngagementService, postID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		err := svc.RecordEvent(TelemetryEvent{PostID: postID, EventType: models.ActivityPageView})
		assert.NoError(t, err)
	}
}

func TestRecomputeTrending(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	engagementService := NewEngagementService(repos.engagement)
	service := NewTrendingService(repos.content, repos.engagement, repos.trending)

	hot := createPost(t, db, "hot", []string{"ai"}, nil, 0.5)
	quiet := createPost(t, db, "quiet", []string{"tech"}, nil, 0.5)
	createPost(t, db, "old", []string{"ai"}, nil, 10) // outside the 24h window

	recordViews(t, engagementService, hot.ID, 30)
	for i := 0; i < 6; i++ {
		err := engagementService.RecordEvent(TelemetryEvent{PostID: hot.ID, EventType: models.ActivityShare})
		assert.NoError(t, err)
	}

	processed, err := service.RecomputeTrending(context.Background(), models.Timeframe24h)
	assert.NoError(t, err)
	assert.Equal(t, 2, processed)

	var records []models.TrendingScore
	assert.NoError(t, db.Order("score DESC").Find(&records).Error)
	assert.Len(t, records, 2)

	assert.Equal(t, hot.ID, records[0].PostID)
	assert.True(t, records[0].IsCurrentlyTrending)
	assert.Equal(t, int64(30), records[0].ViewsInWindow)
	assert.Equal(t, int64(6), records[0].EngagementsInWindow)
	assert.Greater(t, records[0].Score, 10.0)

	assert.Equal(t, quiet.ID, records[1].PostID)
	assert.False(t, records[1].IsCurrentlyTrending)
}

func TestRecomputeTrendingIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	engagementService := NewEngagementService(repos.engagement)
	service := NewTrendingService(repos.content, repos.engagement, repos.trending)

	post := createPost(t, db, "post", []string{"ai"}, nil, 0.5)
	recordViews(t, engagementService, post.ID, 10)

	for i := 0; i < 3; i++ {
		_, err := service.RecomputeTrending(context.Background(), models.Timeframe24h)
		assert.NoError(t, err)
	}

	// Re-running rewrites the same record instead of stacking new ones.
	var count int64
	db.Model(&models.TrendingScore{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTrendingPostsRanksByScore(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewTrendingService(repos.content, repos.engagement, repos.trending)

	first := createPost(t, db, "first", nil, nil, 1)
	second := createPost(t, db, "second", nil, nil, 1)

	upsertScore(t, repos, first.ID, models.Timeframe24h, 40, true)
	upsertScore(t, repos, second.ID, models.Timeframe24h, 25, true)

	posts, err := service.TrendingPosts(models.Timeframe24h, 10, "")
	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].PostID)
	assert.Equal(t, second.ID, posts[1].PostID)
	assert.True(t, posts[0].IsCurrentlyTrending)
}

func TestTrendingPostsBackfill(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewTrendingService(repos.content, repos.engagement, repos.trending)

	trending := createPost(t, db, "trending", nil, nil, 1)
	upsertScore(t, repos, trending.ID, models.Timeframe24h, 30, true)

	// Engaged but not trending: eligible for backfill.
	engaged := createPost(t, db, "engaged", nil, nil, 2)
	setEngagementScore(t, db, engaged.ID, 55)

	// Below the engagement floor: never backfilled.
	ignored := createPost(t, db, "ignored", nil, nil, 2)
	setEngagementScore(t, db, ignored.ID, 5)

	posts, err := service.TrendingPosts(models.Timeframe24h, 5, "")
	assert.NoError(t, err)
	assert.Len(t, posts, 2)

	assert.Equal(t, trending.ID, posts[0].PostID)
	assert.True(t, posts[0].IsCurrentlyTrending)

	// The backfilled entry is pseudo-trending: present, scored by
	// engagement, but not flagged.
	assert.Equal(t, engaged.ID, posts[1].PostID)
	assert.False(t, posts[1].IsCurrentlyTrending)
	assert.Equal(t, 55.0, posts[1].Score)
}

func TestTrendingPostsCategoryFilter(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewTrendingService(repos.content, repos.engagement, repos.trending)

	tech := createCategory(t, db, "tech")
	culture := createCategory(t, db, "culture")

	inTech := createPost(t, db, "in-tech", nil, &tech.ID, 1)
	inCulture := createPost(t, db, "in-culture", nil, &culture.ID, 1)
	upsertScore(t, repos, inTech.ID, models.Timeframe24h, 30, true)
	upsertScore(t, repos, inCulture.ID, models.Timeframe24h, 40, true)

	posts, err := service.TrendingPosts(models.Timeframe24h, 10, "tech")
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, inTech.ID, posts[0].PostID)
}

func upsertScore(t *testing.T, repos testRepos, postID uuid.UUID, timeframe string, score float64, isTrending bool) {
	err := repos.trending.Upsert(&models.TrendingScore{
		PostID:              postID,
		Timeframe:           timeframe,
		Score:               score,
		IsCurrentlyTrending: isTrending,
		UpdatedAt:           time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to upsert trending score: %v", err)
	}
}

func setEngagementScore(t *testing.T, db *gorm.DB, postID uuid.UUID, score float64) {
	aggregate := &models.PostAnalytics{
		ID:              uuid.New(),
		PostID:          postID,
		EngagementScore: score,
	}
	if err := db.Create(aggregate).Error; err != nil {
		t.Fatalf("Failed to create aggregate: %v", err)
	}
}
