package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/broadcast"
	"campusvote/internal/cache"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/repository"
)

// VoteService casts votes.
type VoteService interface {
	// CastVote records one vote of voterID for candidateID in electionID.
	CastVote(ctx context.Context, voterID, electionID, candidateID uuid.UUID) error
}

type voteService struct {
	repos            *repository.Repositories
	cache            *cache.Client
	publisher        broadcast.Publisher
	auditor          Auditor
	timeout          time.Duration
	broadcastTimeout time.Duration
	now              func() time.Time
}

// NewVoteService creates a new vote service.
func NewVoteService(
	repos *repository.Repositories,
	cacheClient *cache.Client,
	publisher broadcast.Publisher,
	auditor Auditor,
	timeout, broadcastTimeout time.Duration,
) VoteService {
	return &voteService{
		repos:            repos,
		cache:            cacheClient,
		publisher:        publisher,
		auditor:          auditor,
		timeout:          timeout,
		broadcastTimeout: broadcastTimeout,
		now:              time.Now,
	}
}

// CastVote checks the preconditions in a fixed order, then flips the voter flag
// and increments the candidate counter in one transaction. The flag update is
// conditional on has_voted=false, so concurrent attempts by one voter count once.
func (s *voteService) CastVote(ctx context.Context, voterID, electionID, candidateID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.castVote(ctx, voterID, electionID, candidateID)

	outcome := model.VoteOutcomeRecorded
	if err != nil {
		outcome = apperrors.Code(err)
	}
	if s.auditor != nil {
		s.auditor.Record(context.WithoutCancel(ctx), model.VoteAttempt{
			VoterID:    voterID,
			ElectionID: electionID,
			Outcome:    outcome,
		})
	}
	if err != nil {
		return err
	}

	// The vote is committed; nothing below may fail the request.
	after := context.WithoutCancel(ctx)
	_ = s.cache.Delete(after, cache.ResultsKey(electionID))
	s.broadcast(after, electionID)
	return nil
}

func (s *voteService) castVote(ctx context.Context, voterID, electionID, candidateID uuid.UUID) error {
	voter, err := s.repos.Users.FindByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnauthenticated
		}
		return fmt.Errorf("find voter: %w", err)
	}
	if voter.Role != model.RoleVoter {
		return apperrors.ErrUnauthenticated
	}
	if voter.HasVoted {
		return apperrors.ErrAlreadyVoted
	}

	election, err := s.repos.Elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrElectionNotFound
		}
		return fmt.Errorf("find election: %w", err)
	}
	if election.Status != model.ElectionStatusActive {
		return apperrors.ErrElectionNotActive
	}
	if !election.AcceptsVotesAt(s.now()) {
		return apperrors.ErrVotingWindowClosed
	}

	candidate, err := s.repos.Candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCandidateNotFound
		}
		return fmt.Errorf("find candidate: %w", err)
	}
	if candidate.ElectionID != electionID {
		return apperrors.ErrCandidateNotFound
	}

	return s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		marked, err := tx.Users.MarkVoted(ctx, voterID, candidateID)
		if err != nil {
			return fmt.Errorf("mark voted: %w", err)
		}
		if !marked {
			return apperrors.ErrAlreadyVoted
		}

		counted, err := tx.Candidates.IncrementVoteCount(ctx, candidateID, electionID)
		if err != nil {
			return fmt.Errorf("increment vote count: %w", err)
		}
		if !counted {
			// candidate removed since the check; roll the voter flag back
			return apperrors.ErrCandidateNotFound
		}
		return nil
	})
}

// broadcast publishes the election's fresh standings. Failures are logged only.
func (s *voteService) broadcast(ctx context.Context, electionID uuid.UUID) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.broadcastTimeout)
	defer cancel()

	candidates, err := s.repos.Candidates.ListByElection(ctx, electionID)
	if err != nil {
		slog.Warn("vote broadcast skipped", "election", electionID, "err", err)
		return
	}

	event := broadcast.Event{ElectionID: electionID, Candidates: candidates}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("vote broadcast failed", "election", electionID, "err", err)
	}
}
