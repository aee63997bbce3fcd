package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadingHistory records that a user read a post. Rows are owned by the
// reading surface; this engine only ever reads them.
type ReadingHistory struct {
	ID     uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"user_id" db:"user_id" gorm:"not null;index:idx_reading_user_time"`
	PostID uuid.UUID `json:"post_id" db:"post_id" gorm:"not null;index"`

	LastReadAt time.Time `json:"last_read_at" db:"last_read_at" gorm:"not null;index:idx_reading_user_time"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Post Post `json:"post,omitempty" gorm:"foreignKey:PostID;references:ID"`
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// TableName sets the table name for the ReadingHistory model
func (ReadingHistory) TableName() string {
	return "reading_histories"
}
