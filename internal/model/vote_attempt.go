package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteOutcomeRecorded marks an attempt that counted.
const VoteOutcomeRecorded = "RECORDED"

// VoteAttempt is an audit entry for a vote request.
// All attempts are logged regardless of success or failure; the chosen candidate
// is deliberately not stored here.
type VoteAttempt struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	VoterID    uuid.UUID `json:"voterId" gorm:"type:char(36);not null;index"`
	ElectionID uuid.UUID `json:"electionId" gorm:"type:char(36);not null;index"`
	Outcome    string    `json:"outcome" gorm:"type:varchar(32);not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BeforeCreate sets UUID before creating the record.
func (a *VoteAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
