package services

import (
	"testing"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func tagSet(tags ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     map[string]struct{}
		expected float64
	}{
		{"identical sets", tagSet("ai", "tech"), tagSet("ai", "tech"), 1.0},
		{"both empty", tagSet(), tagSet(), 0.0},
		{"one empty", tagSet("ai"), tagSet(), 0.0},
		{"partial overlap", tagSet("ai", "tech"), tagSet("ai", "gaming"), 1.0 / 3.0},
		{"disjoint", tagSet("ai"), tagSet("gaming"), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestContentSimilaritySymmetric(t *testing.T) {
	categoryID := uuid.New()
	otherCategoryID := uuid.New()

	posts := []*models.Post{
		{Tags: pq.StringArray{"ai", "tech"}, CategoryID: &categoryID},
		{Tags: pq.StringArray{"ai", "gaming"}, CategoryID: &otherCategoryID},
		{Tags: pq.StringArray{}, CategoryID: nil},
		{Tags: pq.StringArray{"culture"}, CategoryID: &categoryID},
	}

	for i := range posts {
		for j := range posts {
			assert.Equal(t, ContentSimilarity(posts[i], posts[j]), ContentSimilarity(posts[j], posts[i]))
		}
	}
}

func TestContentSimilaritySameCategoryDisjointTags(t *testing.T) {
	categoryID := uuid.New()
	a := &models.Post{Tags: pq.StringArray{"ai"}, CategoryID: &categoryID}
	b := &models.Post{Tags: pq.StringArray{"gaming"}, CategoryID: &categoryID}

	assert.InDelta(t, 0.3, ContentSimilarity(a, b), 1e-9)
}

func TestContentSimilarityBounds(t *testing.T) {
	categoryID := uuid.New()
	a := &models.Post{Tags: pq.StringArray{"ai", "tech"}, CategoryID: &categoryID}

	// A post is maximally similar to itself.
	assert.InDelta(t, 1.0, ContentSimilarity(a, a), 1e-9)

	// Two posts with nothing in common score zero.
	b := &models.Post{Tags: pq.StringArray{"food"}, CategoryID: nil}
	assert.InDelta(t, 0.0, ContentSimilarity(a, b), 1e-9)
}

func TestRelatedPostsUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewSimilarityService(repos.content, repos.engagement)

	posts, err := service.RelatedPosts(uuid.New(), 5)
	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRelatedPosts(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewSimilarityService(repos.content, repos.engagement)

	category := createCategory(t, db, "tech")
	target := createPost(t, db, "target", []string{"ai", "tech"}, &category.ID, 1)
	twin := createPost(t, db, "twin", []string{"ai", "tech"}, &category.ID, 2)
	cousin := createPost(t, db, "cousin", []string{"gaming"}, &category.ID, 3)
	createPost(t, db, "stranger", []string{"food"}, nil, 1)

	related, err := service.RelatedPosts(target.ID, 10)
	assert.NoError(t, err)

	ids := make([]uuid.UUID, len(related))
	for i, post := range related {
		ids[i] = post.PostID
	}

	// Never includes the target itself or unrelated posts.
	assert.NotContains(t, ids, target.ID)
	assert.Contains(t, ids, twin.ID)
	assert.Contains(t, ids, cousin.ID)
	assert.Len(t, related, 2)

	// The identical post outranks the category-only match.
	assert.Equal(t, twin.ID, related[0].PostID)
	assert.Greater(t, related[0].Score, related[1].Score)
}

func TestRelatedPostsLimit(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewSimilarityService(repos.content, repos.engagement)

	category := createCategory(t, db, "tech")
	target := createPost(t, db, "target", []string{"ai"}, &category.ID, 1)
	for i := 0; i < 5; i++ {
		createPost(t, db, "related-"+string(rune('a'+i)), []string{"ai"}, &category.ID, float64(i+2))
	}

	related, err := service.RelatedPosts(target.ID, 2)
	assert.NoError(t, err)
	assert.Len(t, related, 2)
}

func TestRelatedPostsBlendsTrending(t *testing.T) {
	db := setupTestDB(t)
	repos := setupRepos(db)
	service := NewSimilarityService(repos.content, repos.engagement)

	category := createCategory(t, db, "tech")
	target := createPost(t, db, "target", []string{"ai"}, &category.ID, 1)
	quiet := createPost(t, db, "quiet", []string{"ai"}, &category.ID, 2)
	hot := createPost(t, db, "hot", []string{"ai"}, &category.ID, 3)

	// Identical similarity; trending should break the tie in favor of hot.
	aggregate, err := repos.engagement.GetOrCreateAggregate(hot.ID)
	assert.NoError(t, err)
	aggregate.Views = 5000
	aggregate.ShareCount = 40
	aggregate.AvgReadTime = 180
	assert.NoError(t, repos.engagement.SaveAggregate(aggregate))

	related, err := service.RelatedPosts(target.ID, 2)
	assert.NoError(t, err)
	assert.Len(t, related, 2)
	assert.Equal(t, hot.ID, related[0].PostID)
	assert.Equal(t, quiet.ID, related[1].PostID)
}
