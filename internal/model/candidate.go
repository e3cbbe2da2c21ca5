package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCandidateImage is used when a candidate is created without an upload.
const DefaultCandidateImage = "no-photo.jpg"

// Candidate is an option within one election. VoteCount is only ever changed by
// the vote engine (increment) or the reconciler (raise to recorded votes).
type Candidate struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Image      string    `json:"image" gorm:"size:512;not null;default:'no-photo.jpg'"`
	ElectionID uuid.UUID `json:"electionId" gorm:"type:char(36);not null;index"`
	VoteCount  int64     `json:"voteCount" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID and default image before creating the record.
func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Image == "" {
		c.Image = DefaultCandidateImage
	}
	return nil
}
