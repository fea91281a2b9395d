package models

import (
	"time"

	"github.com/google/uuid"
)

// User owns its litter reports; reports are never shared across users.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string         `gorm:"not null;size:255;uniqueIndex" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Reports      []LitterReport `gorm:"foreignKey:OwnerID" json:"reports,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
