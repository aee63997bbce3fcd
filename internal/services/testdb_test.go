package services

import (
	"testing"
	"time"

	"magpulse/internal/models"
	"magpulse/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

type testRepos struct {
	content    *store.GormContentRepository
	engagement *store.GormEngagementRepository
	trending   *store.GormTrendingRepository
	history    *store.GormReadingHistoryRepository
}

func setupRepos(db *gorm.DB) testRepos {
	return testRepos{
		content:    store.NewGormContentRepository(db),
		engagement: store.NewGormEngagementRepository(db),
		trending:   store.NewGormTrendingRepository(db),
		history:    store.NewGormReadingHistoryRepository(db),
	}
}

// createPost inserts a published post with the given tags and category,
// published ageDays ago.
func createPost(t *testing.T, db *gorm.DB, slug string, tags []string, categoryID *uuid.UUID, ageDays float64) *models.Post {
	publishedAt := time.Now().Add(-time.Duration(ageDays * 24 * float64(time.Hour)))
	post := &models.Post{
		ID:          uuid.New(),
		Slug:        slug,
		Title:       slug,
		Tags:        pq.StringArray(tags),
		CategoryID:  categoryID,
		Status:      models.PostStatusPublished,
		PublishedAt: &publishedAt,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post %s: %v", slug, err)
	}
	return post
}

func createCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	category := &models.Category{
		ID:   uuid.New(),
		Slug: slug,
		Name: slug,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", slug, err)
	}
	return category
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	user := &models.User{
		ID:    uuid.New(),
		Email: email,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func createRead(t *testing.T, db *gorm.DB, userID, postID uuid.UUID, when time.Time) {
	entry := &models.ReadingHistory{
		ID:         uuid.New(),
		UserID:     userID,
		PostID:     postID,
		LastReadAt: when,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("Failed to create reading history entry: %v", err)
	}
}
