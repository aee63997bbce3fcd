package services

import (
	"testing"
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupRecommender(repos testRepos) *RecommenderService {
	similarity := NewSimilarityService(repos.content, repos.engagement)
	scorer := NewTrendingService(repos.content, repos.engagement, repos.trending)
	profiles := NewProfileService(repos.history)
	return NewRecommenderService(repos.content, repos.engagement, repos.trending, similarity, scorer, profiles)
}

func TestForYouAnonymousFallsBackToTrending(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	recommender := setupRecommender(repos)

	first := createPost(t, db, "first", nil, nil, 1)
	second := createPost(t, db, "second", nil, nil, 1)
	upsertScore(t, repos, first.ID, models.Timeframe24h, 40, true)
	upsertScore(t, repos, second.ID, models.Timeframe24h, 25, true)

	personalized, err := recommender.ForYou(nil, 10)
	assert.NoError(t, err)
	trending, err := recommender.TrendingPosts(models.Timeframe24h, 10, "")
	assert.NoError(t, err)
	assert.Equal(t, trending, personalized)
}

func TestForYouMatchesInterests(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	recommender := setupRecommender(repos)
	user := createUser(t, db, "reader@example.com")

	read := createPost(t, db, "read", []string{"ai"}, nil, 5)
	createRead(t, db, user.ID, read.ID, time.Now().Add(-24*time.Hour))

	match := createPost(t, db, "match", []string{"ai", "robots"}, nil, 1)
	createPost(t, db, "unrelated", []string{"gardening"}, nil, 1)

	results, err := recommender.ForYou(&user.ID, 10)
	assert.NoError(t, err)

	ids := resultIDs(results)
	assert.Contains(t, ids, match.ID)
	assert.NotContains(t, ids, read.ID)
}

func TestForYouNeverRepeatsReadPosts(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	recommender := setupRecommender(repos)
	user := createUser(t, db, "reader@example.com")

	now := time.Now()
	for i, slug := range []string{"read-a", "read-b", "read-c"} {
		post := createPost(t, db, slug, []string{"ai"}, nil, 1)
		createRead(t, db, user.ID, post.ID, now.Add(-time.Duration(i+1)*time.Hour))
		// Every read post is also trending, the strongest pull back in.
		upsertScore(t, repos, post.ID, models.Timeframe24h, 50, true)
	}
	fresh := createPost(t, db, "fresh", []string{"ai"}, nil, 1)

	results, err := recommender.ForYou(&user.ID, 10)
	assert.NoError(t, err)

	ids := resultIDs(results)
	assert.Equal(t, []uuid.UUID{fresh.ID}, ids)
}

func TestForYouTopsUpFromTrending(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	recommender := setupRecommender(repos)
	user := createUser(t, db, "reader@example.com")

	read := createPost(t, db, "read", []string{"ai"}, nil, 5)
	createRead(t, db, user.ID, read.ID, time.Now().Add(-24*time.Hour))

	match := createPost(t, db, "match", []string{"ai"}, nil, 1)
	offTopic := createPost(t, db, "off-topic", []string{"cooking"}, nil, 1)
	upsertScore(t, repos, offTopic.ID, models.Timeframe24h, 30, true)

	results, err := recommender.ForYou(&user.ID, 4)
	assert.NoError(t, err)

	ids := resultIDs(results)
	assert.Contains(t, ids, match.ID)
	assert.Contains(t, ids, offTopic.ID)
}

func TestForYouRanksTrendingInterestsFirst(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	recommender := setupRecommender(repos)
	user := createUser(t, db, "reader@example.com")

	read := createPost(t, db, "read", []string{"ai"}, nil, 5)
	createRead(t, db, user.ID, read.ID, time.Now().Add(-24*time.Hour))

	hot := createPost(t, db, "hot", []string{"ai"}, nil, 1)
	cold := createPost(t, db, "cold", []string{"ai"}, nil, 1)
	upsertScore(t, repos, hot.ID, models.Timeframe24h, 40, true)

	results, err := recommender.ForYou(&user.ID, 10)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, hot.ID, results[0].PostID)
	assert.True(t, results[0].IsCurrentlyTrending)
	assert.Equal(t, cold.ID, results[1].PostID)
	assert.False(t, results[1].IsCurrentlyTrending)
}

func TestForYouLimit(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	recommender := setupRecommender(repos)
	user := createUser(t, db, "reader@example.com")

	read := createPost(t, db, "read", []string{"ai"}, nil, 5)
	createRead(t, db, user.ID, read.ID, time.Now().Add(-24*time.Hour))

	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		createPost(t, db, slug, []string{"ai"}, nil, 1)
	}

	results, err := recommender.ForYou(&user.ID, 3)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
}

func resultIDs(results []ScoredPost) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.PostID)
	}
	return ids
}
