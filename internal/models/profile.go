package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile carries the application-facing user data. Its ID equals the auth
// identity's ID; the row is inserted in a second step after signup, so a
// missing profile is possible and callers default name/role when it is.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	Role      string    `gorm:"size:50;default:'Aluno'" json:"role"`
	XPTotal   int       `gorm:"column:xp_total;default:0" json:"xp_total"`
	Level     int       `gorm:"default:1" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
