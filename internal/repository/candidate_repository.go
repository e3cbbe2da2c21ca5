package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/model"
)

// standingsOrder ranks candidates by votes, ties going to the earliest created.
const standingsOrder = "vote_count DESC, created_at ASC, id ASC"

// CandidateRepository defines candidate persistence operations.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	ListByElection(ctx context.Context, electionID uuid.UUID) ([]model.Candidate, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	IncrementVoteCount(ctx context.Context, id, electionID uuid.UUID) (bool, error)
	RaiseVoteCount(ctx context.Context, id uuid.UUID, to int64) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByElection(ctx context.Context, electionID uuid.UUID) (int64, error)
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// Create creates a new candidate.
func (r *candidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

// FindByID finds a candidate by ID.
func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// ListByElection lists an election's candidates in standings order.
func (r *candidateRepository) ListByElection(ctx context.Context, electionID uuid.UUID) ([]model.Candidate, error) {
	var candidates []model.Candidate
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order(standingsOrder).
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

// UpdateDetails patches display fields. vote_count is never accepted here.
func (r *candidateRepository) UpdateDetails(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	delete(fields, "vote_count")
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).Where("id = ?", id).Updates(fields)
	return res.Error
}

// IncrementVoteCount atomically adds one vote to a candidate of the given election.
func (r *candidateRepository) IncrementVoteCount(ctx context.Context, id, electionID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("id = ? AND election_id = ?", id, electionID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RaiseVoteCount sets the counter to `to` only when that is an increase.
func (r *candidateRepository) RaiseVoteCount(ctx context.Context, id uuid.UUID, to int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("id = ? AND vote_count < ?", id, to).
		UpdateColumn("vote_count", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes one candidate.
func (r *candidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Candidate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByElection removes every candidate of an election.
func (r *candidateRepository) DeleteByElection(ctx context.Context, electionID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("election_id = ?", electionID).Delete(&model.Candidate{})
	return res.RowsAffected, res.Error
}
