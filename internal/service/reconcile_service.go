package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/cache"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/repository"
)

// CandidateDrift compares a candidate's counter with the votes users recorded for it.
type CandidateDrift struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Name        string    `json:"name"`
	Counted     int64     `json:"counted"`
	Recorded    int64     `json:"recorded"`
	Drift       int64     `json:"drift"`
	Fixed       bool      `json:"fixed"`
}

// ReconcileReport is the outcome of one reconciliation run.
type ReconcileReport struct {
	ElectionID uuid.UUID        `json:"electionId"`
	Candidates []CandidateDrift `json:"candidates"`
	Consistent bool             `json:"consistent"`
	Fixed      int              `json:"fixed"`
}

// ReconcileService detects counters that disagree with recorded votes.
type ReconcileService interface {
	// Reconcile reports drift for every candidate of the election. With fix,
	// undercounted candidates are raised to the recorded count; counters are
	// never lowered.
	Reconcile(ctx context.Context, electionID uuid.UUID, fix bool) (*ReconcileReport, error)
}

type reconcileService struct {
	repos *repository.Repositories
	cache *cache.Client
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(repos *repository.Repositories, cacheClient *cache.Client) ReconcileService {
	return &reconcileService{repos: repos, cache: cacheClient}
}

func (s *reconcileService) Reconcile(ctx context.Context, electionID uuid.UUID, fix bool) (*ReconcileReport, error) {
	if _, err := s.repos.Elections.FindByID(ctx, electionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrElectionNotFound
		}
		return nil, fmt.Errorf("find election: %w", err)
	}

	candidates, err := s.repos.Candidates.ListByElection(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	recorded, err := s.repos.Users.CountVotesByCandidate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count recorded votes: %w", err)
	}

	report := &ReconcileReport{
		ElectionID: electionID,
		Candidates: make([]CandidateDrift, 0, len(candidates)),
		Consistent: true,
	}
	for _, c := range candidates {
		d := CandidateDrift{
			CandidateID: c.ID,
			Name:        c.Name,
			Counted:     c.VoteCount,
			Recorded:    recorded[c.ID],
			Drift:       c.VoteCount - recorded[c.ID],
		}
		if d.Drift != 0 {
			report.Consistent = false
		}
		if fix && d.Drift < 0 {
			raised, err := s.repos.Candidates.RaiseVoteCount(ctx, c.ID, d.Recorded)
			if err != nil {
				return nil, fmt.Errorf("raise vote count: %w", err)
			}
			d.Fixed = raised
			if raised {
				report.Fixed++
			}
		}
		report.Candidates = append(report.Candidates, d)
	}

	if report.Fixed > 0 {
		_ = s.cache.Delete(ctx, cache.ResultsKey(electionID))
	}
	return report, nil
}
