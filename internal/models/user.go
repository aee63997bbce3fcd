package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a reader identity. Account management lives in the CMS;
// the engine only needs a stable id to key reading history and feeds.
type User struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email    string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	Name     string    `json:"name" db:"name"`
	IsActive bool      `json:"is_active" db:"is_active" gorm:"default:true"`

	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
	LastSeenAt time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// TableName sets the table name for the User model
func (User) TableName() string {
	return "users"
}
