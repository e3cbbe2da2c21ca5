package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/cache"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/repository"
)

// ElectionPatch holds the fields an admin may change. Nil fields are left as is.
type ElectionPatch struct {
	Title     *string
	Status    *model.ElectionStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// ElectionService manages the election lifecycle.
type ElectionService interface {
	Create(ctx context.Context, title string, startDate, endDate time.Time) (*model.Election, error)
	List(ctx context.Context, status model.ElectionStatus) ([]model.Election, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Election, error)
	Update(ctx context.Context, id uuid.UUID, patch ElectionPatch) (*model.Election, error)
	// Delete removes the election with its candidates and clears every user's
	// vote flag system wide.
	Delete(ctx context.Context, id uuid.UUID) error
	// Certify picks the winner of an ended election and freezes it.
	Certify(ctx context.Context, id uuid.UUID) (*model.Election, *model.Candidate, error)
}

type electionService struct {
	repos *repository.Repositories
	cache *cache.Client
}

// NewElectionService creates a new election service.
func NewElectionService(repos *repository.Repositories, cacheClient *cache.Client) ElectionService {
	return &electionService{repos: repos, cache: cacheClient}
}

func (s *electionService) Create(ctx context.Context, title string, startDate, endDate time.Time) (*model.Election, error) {
	title = strings.TrimSpace(title)
	if title == "" || startDate.IsZero() || endDate.IsZero() || !endDate.After(startDate) {
		return nil, apperrors.ErrInvalidElection
	}

	election := &model.Election{
		Title:     title,
		Status:    model.ElectionStatusPending,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err := s.repos.Elections.Create(ctx, election); err != nil {
		return nil, fmt.Errorf("create election: %w", err)
	}
	return election, nil
}

func (s *electionService) List(ctx context.Context, status model.ElectionStatus) ([]model.Election, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	elections, err := s.repos.Elections.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	return elections, nil
}

func (s *electionService) Get(ctx context.Context, id uuid.UUID) (*model.Election, error) {
	election, err := s.find(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repos.Candidates.ListByElection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	election.Candidates = candidates
	return election, nil
}

func (s *electionService) Update(ctx context.Context, id uuid.UUID, patch ElectionPatch) (*model.Election, error) {
	election, err := s.find(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if election.IsCertified {
		return nil, apperrors.ErrElectionCertified
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.ErrInvalidElection
		}
		fields["title"] = title
		election.Title = title
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperrors.ErrInvalidStatus
		}
		fields["status"] = *patch.Status
		election.Status = *patch.Status
	}
	if patch.StartDate != nil {
		fields["start_date"] = *patch.StartDate
		election.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		fields["end_date"] = *patch.EndDate
		election.EndDate = *patch.EndDate
	}
	if !election.EndDate.After(election.StartDate) {
		return nil, apperrors.ErrInvalidElection
	}
	if len(fields) == 0 {
		return election, nil
	}

	if err := s.repos.Elections.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update election: %w", err)
	}
	return s.find(ctx, s.repos, id)
}

func (s *electionService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := s.find(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.Candidates.DeleteByElection(ctx, id); err != nil {
			return fmt.Errorf("delete candidates: %w", err)
		}
		if err := tx.Elections.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete election: %w", err)
		}
		if _, err := tx.Users.ResetAllVotes(ctx); err != nil {
			return fmt.Errorf("reset votes: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, cache.ResultsKey(id))
	return nil
}

func (s *electionService) Certify(ctx context.Context, id uuid.UUID) (*model.Election, *model.Candidate, error) {
	election, err := s.find(ctx, s.repos, id)
	if err != nil {
		return nil, nil, err
	}
	if election.Status != model.ElectionStatusEnded {
		return nil, nil, apperrors.ErrElectionNotEnded
	}
	if election.IsCertified {
		return nil, nil, apperrors.ErrElectionCertified
	}

	// already in standings order: most votes, then earliest created, then id
	candidates, err := s.repos.Candidates.ListByElection(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil, apperrors.ErrNoCandidates
	}
	winner := candidates[0]

	certified, err := s.repos.Elections.Certify(ctx, id, winner.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("certify election: %w", err)
	}
	if !certified {
		// lost a race with another certify or a status change
		current, err := s.find(ctx, s.repos, id)
		if err != nil {
			return nil, nil, err
		}
		if current.IsCertified {
			return nil, nil, apperrors.ErrElectionCertified
		}
		return nil, nil, apperrors.ErrElectionNotEnded
	}

	election.IsCertified = true
	election.WinnerID = &winner.ID
	election.Candidates = candidates
	return election, &winner, nil
}

func (s *electionService) find(ctx context.Context, repos *repository.Repositories, id uuid.UUID) (*model.Election, error) {
	election, err := repos.Elections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrElectionNotFound
		}
		return nil, fmt.Errorf("find election: %w", err)
	}
	return election, nil
}
