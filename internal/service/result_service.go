package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"campusvote/internal/cache"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// ElectionResults is the tally of one election.
type ElectionResults struct {
	ElectionID          uuid.UUID         `json:"electionId"`
	Candidates          []model.Candidate `json:"candidates"`
	TotalVotes          int64             `json:"totalVotes"`
	TotalEligibleVoters int64             `json:"totalEligibleVoters"`
	TurnoutPercent      string            `json:"turnoutPercent"`
}

// AdminStats summarizes participation across the whole system.
type AdminStats struct {
	TotalVoters       int64  `json:"totalVoters"`
	TotalVoted        int64  `json:"totalVoted"`
	ElectionsCount    int64  `json:"electionsCount"`
	ParticipationRate string `json:"participationRate"`
}

// ResultService aggregates tallies. It never writes.
type ResultService interface {
	GetResults(ctx context.Context, electionID uuid.UUID) (*ElectionResults, error)
	GetAdminStats(ctx context.Context) (*AdminStats, error)
}

// standingsCache is the slice of *cache.Client the aggregator needs.
type standingsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// standings is the cached part of ElectionResults. Voter counts are read live.
type standings struct {
	Candidates []model.Candidate `json:"candidates"`
	TotalVotes int64             `json:"totalVotes"`
}

type resultService struct {
	repos    *repository.Repositories
	cache    standingsCache
	cacheTTL time.Duration
}

// NewResultService creates a new result service.
func NewResultService(repos *repository.Repositories, cacheClient *cache.Client, cacheTTL time.Duration) ResultService {
	return &resultService{repos: repos, cache: cacheClient, cacheTTL: cacheTTL}
}

// GetResults returns the candidates in standings order with turnout against all
// registered voters. Standings are cached until the next vote or change; the
// eligible voter count is always read fresh.
func (s *resultService) GetResults(ctx context.Context, electionID uuid.UUID) (*ElectionResults, error) {
	board, err := s.standings(ctx, electionID)
	if err != nil {
		return nil, err
	}

	eligible, err := s.repos.Users.CountByRole(ctx, model.RoleVoter)
	if err != nil {
		return nil, fmt.Errorf("count voters: %w", err)
	}

	return &ElectionResults{
		ElectionID:          electionID,
		Candidates:          board.Candidates,
		TotalVotes:          board.TotalVotes,
		TotalEligibleVoters: eligible,
		TurnoutPercent:      Percent(board.TotalVotes, eligible, 1),
	}, nil
}

func (s *resultService) standings(ctx context.Context, electionID uuid.UUID) (*standings, error) {
	key := cache.ResultsKey(electionID)
	if cached, _ := s.cache.Get(ctx, key); cached != nil {
		var board standings
		if err := json.Unmarshal(cached, &board); err == nil {
			return &board, nil
		}
	}

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

	board := &standings{Candidates: candidates}
	for _, c := range candidates {
		board.TotalVotes += c.VoteCount
	}

	if payload, err := json.Marshal(board); err == nil {
		_ = s.cache.Set(ctx, key, payload, s.cacheTTL)
	}
	return board, nil
}

// GetAdminStats counts voters, voted users and elections concurrently.
func (s *resultService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repos.Users.CountByRole(ctx, model.RoleVoter)
		if err != nil {
			return fmt.Errorf("count voters: %w", err)
		}
		stats.TotalVoters = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repos.Users.CountVoted(ctx)
		if err != nil {
			return fmt.Errorf("count voted: %w", err)
		}
		stats.TotalVoted = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repos.Elections.Count(ctx)
		if err != nil {
			return fmt.Errorf("count elections: %w", err)
		}
		stats.ElectionsCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.ParticipationRate = Percent(stats.TotalVoted, stats.TotalVoters, 2)
	return &stats, nil
}

// Percent formats part/whole*100 with the given number of decimals, or "0" when
// whole is zero.
func Percent(part, whole int64, places int32) string {
	if whole == 0 {
		return "0"
	}
	return decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(whole)).
		StringFixed(places)
}
