package store

import (
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTrendingRepository is the GORM-backed TrendingRepository.
type GormTrendingRepository struct {
	db *gorm.DB
}

// NewGormTrendingRepository creates a new trending repository
func NewGormTrendingRepository(db *gorm.DB) *GormTrendingRepository {
	return &GormTrendingRepository{db: db}
}

// Upsert rewrites the record for (post, timeframe) wholesale.
func (r *GormTrendingRepository) Upsert(score *models.TrendingScore) error {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_id"}, {Name: "timeframe"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score",
			"views_in_window",
			"engagements_in_window",
			"is_currently_trending",
			"updated_at",
		}),
	}).Create(score).Error
}

// TopTrending returns up to max currently-trending records for the
// timeframe, highest score first, restricted to published posts.
func (r *GormTrendingRepository) TopTrending(timeframe string, max int, categorySlug string) ([]models.TrendingScore, error) {
	query := r.db.
		Preload("Post").
		Joins("JOIN posts ON posts.id = trending_scores.post_id").
		Where("trending_scores.timeframe = ? AND trending_scores.is_currently_trending = ?", timeframe, true).
		Where("posts.status = ? AND posts.published_at IS NOT NULL AND posts.published_at <= ?",
			models.PostStatusPublished, time.Now()).
		Order("trending_scores.score DESC, trending_scores.updated_at DESC").
		Limit(max)

	if categorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var scores []models.TrendingScore
	if err := query.Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// ScoresFor returns the current scores for the given posts in one timeframe.
func (r *GormTrendingRepository) ScoresFor(postIDs []uuid.UUID, timeframe string) (map[uuid.UUID]float64, error) {
	scores := make(map[uuid.UUID]float64, len(postIDs))
	if len(postIDs) == 0 {
		return scores, nil
	}

	var records []models.TrendingScore
	err := r.db.
		Where("post_id IN ? AND timeframe = ?", postIDs, timeframe).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		scores[record.PostID] = record.Score
	}
	return scores, nil
}
