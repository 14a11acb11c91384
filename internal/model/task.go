package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// TaskStatuses lists every accepted status value.
var TaskStatuses = []string{StatusPending, StatusInProgress, StatusCompleted}

// IsValidStatus reports whether s is one of TaskStatuses.
func IsValidStatus(s string) bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	Description *string
	Status      string `gorm:"size:15;not null;default:pending;index"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`

	User     User      `gorm:"foreignKey:UserID"`
	Comments []Comment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}
