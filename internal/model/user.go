package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered rider in the system.
type User struct {
	ID                uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string    `json:"name" gorm:"size:255;not null"`
	Email             string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash      string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsVerified        bool      `json:"is_verified" gorm:"default:false;index"`
	VerificationToken uuid.UUID `json:"-" gorm:"type:char(36);index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BeforeCreate sets the user ID and verification token before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.VerificationToken == uuid.Nil {
		u.VerificationToken = uuid.New()
	}
	return nil
}
