package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/model"
)

// VoteAttemptRepository defines vote audit persistence operations.
type VoteAttemptRepository interface {
	CreateBatch(ctx context.Context, attempts []model.VoteAttempt) error
	ListByElection(ctx context.Context, electionID uuid.UUID) ([]model.VoteAttempt, error)
}

type voteAttemptRepository struct {
	db *gorm.DB
}

// NewVoteAttemptRepository creates a new vote attempt repository.
func NewVoteAttemptRepository(db *gorm.DB) VoteAttemptRepository {
	return &voteAttemptRepository{db: db}
}

// CreateBatch creates multiple audit entries in a single statement batch.
func (r *voteAttemptRepository) CreateBatch(ctx context.Context, attempts []model.VoteAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(attempts, 100).Error
}

// ListByElection returns the audit trail of an election, oldest first.
func (r *voteAttemptRepository) ListByElection(ctx context.Context, electionID uuid.UUID) ([]model.VoteAttempt, error) {
	var attempts []model.VoteAttempt
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
