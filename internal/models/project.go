package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project is an owner-scoped learning project. SourceID is only set for rows
// copied in from a local installation; its unique index with UserID is what
// makes a re-run of the migration hit the duplicate-suppression path.
type Project struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_projects_owner_source" json:"user_id"`
	Name               string         `gorm:"size:255;not null" json:"name"`
	Description        string         `gorm:"type:text" json:"description"`
	Status             string         `gorm:"size:50;default:'active'" json:"status"`
	PhaseData          datatypes.JSON `gorm:"type:jsonb" json:"phase_data"`
	Tags               datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	ProgressPercentage int            `gorm:"default:0" json:"progress_percentage"`
	SourceID           *string        `gorm:"size:100;uniqueIndex:idx_projects_owner_source" json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
}
