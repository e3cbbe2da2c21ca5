package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/model"
)

// ElectionRepository defines election persistence operations.
type ElectionRepository interface {
	Create(ctx context.Context, election *model.Election) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Election, error)
	List(ctx context.Context, status model.ElectionStatus) ([]model.Election, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	// Certify marks an ended, uncertified election as certified with the given
	// winner. It reports whether the row matched those conditions.
	Certify(ctx context.Context, id, winnerID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type electionRepository struct {
	db *gorm.DB
}

// NewElectionRepository creates a new election repository.
func NewElectionRepository(db *gorm.DB) ElectionRepository {
	return &electionRepository{db: db}
}

// Create creates a new election.
func (r *electionRepository) Create(ctx context.Context, election *model.Election) error {
	return r.db.WithContext(ctx).Omit("Candidates").Create(election).Error
}

// FindByID finds an election by ID.
func (r *electionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Election, error) {
	var election model.Election
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&election).Error; err != nil {
		return nil, err
	}
	return &election, nil
}

// List lists elections newest first; an empty status lists all of them.
func (r *electionRepository) List(ctx context.Context, status model.ElectionStatus) ([]model.Election, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var elections []model.Election
	if err := q.Find(&elections).Error; err != nil {
		return nil, err
	}
	return elections, nil
}

// Update patches the given columns.
func (r *electionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Election{}).Where("id = ?", id).Updates(fields)
	return res.Error
}

// Certify sets the winner conditionally on the election still being certifiable.
func (r *electionRepository) Certify(ctx context.Context, id, winnerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Election{}).
		Where("id = ? AND status = ? AND is_certified = ?", id, model.ElectionStatusEnded, false).
		Updates(map[string]interface{}{
			"is_certified": true,
			"winner_id":    winnerID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes an election.
func (r *electionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Election{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the number of elections.
func (r *electionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Election{}).Count(&count).Error
	return count, err
}
