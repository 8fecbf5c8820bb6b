package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserSettings is upserted, never deleted. The primary key is the owner's ID.
type UserSettings struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Theme         string         `gorm:"size:50;default:'dark'" json:"theme"`
	Language      string         `gorm:"size:20;default:'pt-BR'" json:"language"`
	Notifications datatypes.JSON `gorm:"type:jsonb" json:"notifications"`
	Privacy       datatypes.JSON `gorm:"type:jsonb" json:"privacy"`
	UIPreferences datatypes.JSON `gorm:"column:ui_preferences;type:jsonb" json:"ui_preferences"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
