package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is a single nudge/task inside a project phase. ActivityKey is the
// client-side identifier of the activity template (column activity_id).
type Activity struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Phase       string         `gorm:"size:50" json:"phase"`
	Category    string         `gorm:"size:50" json:"category"`
	ActivityKey string         `gorm:"column:activity_id;size:100" json:"activity_id"`
	Title       string         `gorm:"size:255" json:"title"`
	Detail      string         `gorm:"type:text" json:"detail"`
	Completed   bool           `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time     `json:"completed_at"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Attachments datatypes.JSON `gorm:"type:jsonb" json:"attachments"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
