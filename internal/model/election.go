package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ElectionStatus represents the lifecycle status of an election.
type ElectionStatus string

const (
	ElectionStatusPending ElectionStatus = "pending"
	ElectionStatusActive  ElectionStatus = "active"
	ElectionStatusEnded   ElectionStatus = "ended"
)

// Valid reports whether s is one of the known statuses.
func (s ElectionStatus) Valid() bool {
	switch s {
	case ElectionStatusPending, ElectionStatusActive, ElectionStatusEnded:
		return true
	}
	return false
}

// Election is a time-bounded contest with a set of candidates.
type Election struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Status      ElectionStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	StartDate   time.Time      `json:"startDate" gorm:"not null"`
	EndDate     time.Time      `json:"endDate" gorm:"not null"`
	IsCertified bool           `json:"isCertified" gorm:"not null;default:false"`
	WinnerID    *uuid.UUID     `json:"winner" gorm:"type:char(36)"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Relations
	Candidates []Candidate `json:"candidates,omitempty" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID and the default status before creating the record.
func (e *Election) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = ElectionStatusPending
	}
	return nil
}

// AcceptsVotesAt reports whether the voting window is still open at t.
func (e *Election) AcceptsVotesAt(t time.Time) bool {
	return t.Before(e.EndDate)
}
