package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTP is a one-time phone verification code. At most one live code exists per phone.
type OTP struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Phone     string    `json:"phone" gorm:"size:32;not null;index"`
	Code      string    `json:"-" gorm:"size:16;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate sets UUID before creating the record.
func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the code is no longer usable at t.
func (o *OTP) Expired(t time.Time) bool {
	return o.ExpiresAt.Before(t)
}
