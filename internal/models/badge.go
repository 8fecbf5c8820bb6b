package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Badge is an earned achievement. BadgeID is the caller-supplied natural key;
// the unique index with UserID enforces one award per owner, and inserts that
// hit it are treated as a no-op rather than an error.
type Badge struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_badges_owner_badge" json:"user_id"`
	BadgeID     string         `gorm:"column:badge_id;size:100;not null;uniqueIndex:idx_badges_owner_badge" json:"badge_id"`
	Title       string         `gorm:"size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Icon        string         `gorm:"size:100" json:"icon"`
	XP          int            `gorm:"default:0" json:"xp"`
	Category    string         `gorm:"size:50;default:'special'" json:"category"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	EarnedAt    time.Time      `gorm:"index" json:"earned_at"`
	CreatedAt   time.Time      `json:"created_at"`
}
