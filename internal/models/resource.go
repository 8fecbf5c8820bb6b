package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Resource struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Phase       string         `gorm:"size:50" json:"phase"`
	Type        string         `gorm:"size:50" json:"type"`
	Title       string         `gorm:"size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	URL         string         `gorm:"type:text" json:"url"`
	Content     string         `gorm:"type:text" json:"content"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
