package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WritingAttempt is one submitted, scored writing response. Attempts are
// immutable once created: there is no update or delete path. Ownership is
// either a signed-in user (UserID) or an anonymous guest tracked by a
// client-generated GuestID; both may be null for fully anonymous saves.
type WritingAttempt struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	UserID    *string        `json:"user_id,omitempty" gorm:"type:uuid;index"`
	GuestID   *string        `json:"guest_id,omitempty" gorm:"index"`
	TaskType  string         `json:"task_type" gorm:"not null;index"`
	Prompt    string         `json:"prompt" gorm:"type:text;not null"`
	Response  string         `json:"response" gorm:"type:text;not null"`
	WordCount int            `json:"word_count" gorm:"not null"`
	TimeSpent int            `json:"time_spent" gorm:"not null"` // seconds
	Score     datatypes.JSON `json:"score" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

func (a *WritingAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
