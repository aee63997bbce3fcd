package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Post status values as stored in the posts table.
const (
	PostStatusPublished   = "PUBLISHED"
	PostStatusDraft       = "DRAFT"
	PostStatusUnpublished = "UNPUBLISHED"
)

// Post represents a published magazine article as seen by the ranking engine.
// Content bodies live in the CMS; this engine only needs identity, tags,
// category membership, and publication state.
type Post struct {
	ID    uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug  string    `json:"slug" db:"slug" gorm:"uniqueIndex;not null"`
	Title string    `json:"title" db:"title"`

	// Tags are stored as slugs; the tags table is the lookup arena.
	Tags       pq.StringArray `json:"tags" db:"tags" gorm:"type:text[]"`
	CategoryID *uuid.UUID     `json:"category_id" db:"category_id" gorm:"index"`

	Status      string     `json:"status" db:"status" gorm:"not null;index;default:DRAFT"`
	PublishedAt *time.Time `json:"published_at" db:"published_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Category  *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
	Analytics *PostAnalytics `json:"analytics,omitempty" gorm:"foreignKey:PostID"`
}

// IsPublished reports whether the post is visible to readers.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(time.Now())
}

// TagSet returns the post's tags as a set for similarity math.
func (p *Post) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags))
	for _, tag := range p.Tags {
		set[tag] = struct{}{}
	}
	return set
}

// Category represents an editorial section (e.g. "tech", "culture").
type Category struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug string    `json:"slug" db:"slug" gorm:"uniqueIndex;not null"`
	Name string    `json:"name" db:"name"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// Tag is the lookup table behind Post.Tags slugs.
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug string    `json:"slug" db:"slug" gorm:"uniqueIndex;not null"`
	Name string    `json:"name" db:"name"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName methods
func (Post) TableName() string {
	return "posts"
}

func (Category) TableName() string {
	return "categories"
}

func (Tag) TableName() string {
	return "tags"
}
