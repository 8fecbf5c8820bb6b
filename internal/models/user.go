package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the auth identity row. Application-facing fields (name, role, XP)
// live on Profile; the two are linked by ID and written in separate steps.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
