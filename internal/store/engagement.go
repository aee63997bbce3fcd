package store

import (
	"time"

	"magpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEngagementRepository is the GORM-backed EngagementRepository.
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new engagement repository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// RecordActivity appends one telemetry event row.
func (r *GormEngagementRepository) RecordActivity(activity *models.UserActivity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return r.db.Create(activity).Error
}

// GetOrCreateAggregate returns the aggregate for the post, creating a
// zero-valued row if none exists yet.
func (r *GormEngagementRepository) GetOrCreateAggregate(postID uuid.UUID) (*models.PostAnalytics, error) {
	var aggregate models.PostAnalytics
	err := r.db.
		Where(models.PostAnalytics{PostID: postID}).
		Attrs(models.PostAnalytics{ID: uuid.New()}).
		FirstOrCreate(&aggregate).Error
	if err != nil {
		return nil, err
	}
	return &aggregate, nil
}

// GetAggregate returns the aggregate for the post, or nil if none exists.
func (r *GormEngagementRepository) GetAggregate(postID uuid.UUID) (*models.PostAnalytics, error) {
	var aggregate models.PostAnalytics
	err := r.db.Where("post_id = ?", postID).First(&aggregate).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &aggregate, nil
}

// SaveAggregate persists a modified aggregate.
func (r *GormEngagementRepository) SaveAggregate(aggregate *models.PostAnalytics) error {
	return r.db.Save(aggregate).Error
}

// AggregatesFor returns the aggregates for the given posts.
func (r *GormEngagementRepository) AggregatesFor(postIDs []uuid.UUID) (map[uuid.UUID]*models.PostAnalytics, error) {
	aggregates := make(map[uuid.UUID]*models.PostAnalytics, len(postIDs))
	if len(postIDs) == 0 {
		return aggregates, nil
	}

	var rows []models.PostAnalytics
	if err := r.db.Where("post_id IN ?", postIDs).Find(&rows).Error; err != nil {
		return nil, err
	}

	for i := range rows {
		aggregates[rows[i].PostID] = &rows[i]
	}
	return aggregates, nil
}

// ActivityWindow counts page views and engagement events for the post since
// the given time.
func (r *GormEngagementRepository) ActivityWindow(postID uuid.UUID, since time.Time) (int64, int64, error) {
	var views int64
	err := r.db.Model(&models.UserActivity{}).
		Where("post_id = ? AND created_at >= ? AND activity_type = ?", postID, since, models.ActivityPageView).
		Count(&views).Error
	if err != nil {
		return 0, 0, err
	}

	var engagements int64
	err = r.db.Model(&models.UserActivity{}).
		Where("post_id = ? AND created_at >= ? AND activity_type IN ?", postID, since, models.EngagementActivityTypes).
		Count(&engagements).Error
	if err != nil {
		return 0, 0, err
	}

	return views, engagements, nil
}
