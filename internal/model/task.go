package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the stored status of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusExpired   TaskStatus = "EXPIRED"
)

// Task represents a to-do item owned by a single user.
//
// The stored Status column is never serialized; API responses carry
// CurrentStatus, which is derived from due date and completion at read time.
type Task struct {
	ID            uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string     `json:"name" gorm:"size:80;not null"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"-" gorm:"type:varchar(20);not null;default:'PENDING'"`
	CurrentStatus TaskStatus `json:"current_status" gorm:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	DueDate       time.Time  `json:"due_date" gorm:"not null"`
	OwnerID       uuid.UUID  `json:"owner_id" gorm:"type:char(36);not null;index"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DeriveStatus reports the effective status of the task at the given time.
// Completed is sticky; otherwise a task past its due date is expired. The
// function is pure: callers that want the EXPIRED result persisted must do
// so through an explicit write.
func (t *Task) DeriveStatus(now time.Time) TaskStatus {
	if t.Status == TaskStatusCompleted {
		return TaskStatusCompleted
	}
	if now.After(t.DueDate) {
		return TaskStatusExpired
	}
	return TaskStatusPending
}
