package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityLog is an append-only audit record. Writes are fire-and-forget;
// failures are logged, never surfaced to the caller.
type ActivityLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Action     string         `gorm:"size:100;not null" json:"action"`
	EntityType string         `gorm:"size:50" json:"entity_type"`
	EntityID   string         `gorm:"size:100" json:"entity_id"`
	Metadata   datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	UserAgent  string         `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
