package store

import (
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReadingHistoryRepository is the GORM-backed ReadingHistoryRepository.
type GormReadingHistoryRepository struct {
	db *gorm.DB
}

// NewGormReadingHistoryRepository creates a new reading history repository
func NewGormReadingHistoryRepository(db *gorm.DB) *GormReadingHistoryRepository {
	return &GormReadingHistoryRepository{db: db}
}

// RecentReads returns up to max most recently read entries for the user
// since the given time, with each entry's post preloaded.
func (r *GormReadingHistoryRepository) RecentReads(userID uuid.UUID, since time.Time, max int) ([]models.ReadingHistory, error) {
	var entries []models.ReadingHistory
	err := r.db.
		Preload("Post").
		Where("user_id = ? AND last_read_at >= ?", userID, since).
		Order("last_read_at DESC").
		Limit(max).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
