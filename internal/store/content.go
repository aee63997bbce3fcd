package store

import (
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// candidateScanCap bounds how many published posts a candidate query will
// scan before filtering. Tag overlap is evaluated in Go because the tag
// column is a serialized array.
const candidateScanCap = 500

// GormContentRepository is the GORM-backed ContentRepository.
type GormContentRepository struct {
	db *gorm.DB
}

// NewGormContentRepository creates a new content repository
func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// published scopes a query to posts visible to readers.
func (r *GormContentRepository) published() *gorm.DB {
	return r.db.Where(
		"posts.status = ? AND posts.published_at IS NOT NULL AND posts.published_at <= ?",
		models.PostStatusPublished, time.Now(),
	)
}

// GetPost returns the post with the given id, or nil if it does not exist.
func (r *GormContentRepository) GetPost(id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// RelatedCandidates returns up to max published posts that share the
// target's category or at least one tag, newest first.
func (r *GormContentRepository) RelatedCandidates(target *models.Post, max int) ([]models.Post, error) {
	var posts []models.Post
	err := r.published().
		Where("posts.id <> ?", target.ID).
		Order("posts.published_at DESC").
		Limit(candidateScanCap).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	targetTags := target.TagSet()

	candidates := make([]models.Post, 0, max)
	for _, post := range posts {
		if len(candidates) >= max {
			break
		}
		if sharesCategory(target, &post) || sharesTag(targetTags, &post) {
			candidates = append(candidates, post)
		}
	}
	return candidates, nil
}

// PublishedSince returns published posts whose publish date falls in [since, now].
func (r *GormContentRepository) PublishedSince(since time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := r.published().
		Where("posts.published_at >= ?", since).
		Order("posts.published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// InterestCandidates returns up to max published posts matching any of the
// given tags or categories, newest first, skipping excluded ids.
func (r *GormContentRepository) InterestCandidates(tags []string, categories []uuid.UUID, excluded map[uuid.UUID]struct{}, max int) ([]models.Post, error) {
	if len(tags) == 0 && len(categories) == 0 {
		return nil, nil
	}

	var posts []models.Post
	err := r.published().
		Order("posts.published_at DESC").
		Limit(candidateScanCap).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}
	categorySet := make(map[uuid.UUID]struct{}, len(categories))
	for _, id := range categories {
		categorySet[id] = struct{}{}
	}

	candidates := make([]models.Post, 0, max)
	for _, post := range posts {
		if len(candidates) >= max {
			break
		}
		if _, skip := excluded[post.ID]; skip {
			continue
		}
		if matchesCategory(categorySet, &post) || sharesTag(tagSet, &post) {
			candidates = append(candidates, post)
		}
	}
	return candidates, nil
}

// BackfillCandidates returns published posts with engagement score of at
// least minEngagement, ordered by engagement score then recency.
func (r *GormContentRepository) BackfillCandidates(excluded map[uuid.UUID]struct{}, minEngagement float64, max int, categorySlug string) ([]models.Post, error) {
	query := r.published().
		Preload("Analytics").
		Joins("JOIN post_analytics ON post_analytics.post_id = posts.id").
		Where("post_analytics.engagement_score >= ?", minEngagement).
		Order("post_analytics.engagement_score DESC, posts.published_at DESC").
		Limit(max + len(excluded))

	if categorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	candidates := make([]models.Post, 0, max)
	for _, post := range posts {
		if len(candidates) >= max {
			break
		}
		if _, skip := excluded[post.ID]; skip {
			continue
		}
		candidates = append(candidates, post)
	}
	return candidates, nil
}

func sharesCategory(a, b *models.Post) bool {
	return a.CategoryID != nil && b.CategoryID != nil && *a.CategoryID == *b.CategoryID
}

func sharesTag(tags map[string]struct{}, post *models.Post) bool {
	for _, tag := range post.Tags {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

func matchesCategory(categories map[uuid.UUID]struct{}, post *models.Post) bool {
	if post.CategoryID == nil {
		return false
	}
	_, ok := categories[*post.CategoryID]
	return ok
}
