package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization role carried by a user and its access tokens.
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// User is a registered student (voter) or administrator.
type User struct {
	ID               uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name             string     `json:"name" gorm:"size:255;not null"`
	Email            string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone            string     `json:"phone" gorm:"uniqueIndex;size:32;not null"`
	StudentID        *string    `json:"studentId,omitempty" gorm:"uniqueIndex;size:64"`
	PasswordHash     string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role             Role       `json:"role" gorm:"type:varchar(16);not null;default:'voter';index"`
	PhoneVerified    bool       `json:"phoneVerified" gorm:"not null;default:false"`
	HasVoted         bool       `json:"hasVoted" gorm:"not null;default:false;index"`
	VotedCandidateID *uuid.UUID `json:"votedCandidate" gorm:"type:char(36);index"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleVoter
	}
	return nil
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
