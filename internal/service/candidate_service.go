package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/cache"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/repository"
	"campusvote/internal/storage"
)

// Upload is an image file received with a candidate request.
type Upload struct {
	Filename string
	Content  []byte
}

// CandidateService manages the candidates of an election. Vote counts are never
// set through it.
type CandidateService interface {
	Add(ctx context.Context, electionID uuid.UUID, name string, image *Upload) (*model.Candidate, error)
	Update(ctx context.Context, id uuid.UUID, name *string, image *Upload) (*model.Candidate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type candidateService struct {
	repos *repository.Repositories
	store storage.Store
	cache *cache.Client
}

// NewCandidateService creates a new candidate service.
func NewCandidateService(repos *repository.Repositories, store storage.Store, cacheClient *cache.Client) CandidateService {
	return &candidateService{repos: repos, store: store, cache: cacheClient}
}

func (s *candidateService) Add(ctx context.Context, electionID uuid.UUID, name string, image *Upload) (*model.Candidate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ErrInvalidCandidate
	}
	if _, err := s.editableElection(ctx, electionID); err != nil {
		return nil, err
	}

	candidate := &model.Candidate{
		Name:       strings.TrimSpace(name),
		ElectionID: electionID,
		Image:      model.DefaultCandidateImage,
	}
	if image != nil {
		ref, err := s.saveImage(ctx, electionID, image)
		if err != nil {
			return nil, err
		}
		candidate.Image = ref
	}

	if err := s.repos.Candidates.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.ResultsKey(electionID))
	return candidate, nil
}

func (s *candidateService) Update(ctx context.Context, id uuid.UUID, name *string, image *Upload) (*model.Candidate, error) {
	candidate, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableElection(ctx, candidate.ElectionID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if name != nil && strings.TrimSpace(*name) != "" {
		fields["name"] = strings.TrimSpace(*name)
	}
	if image != nil {
		ref, err := s.saveImage(ctx, candidate.ElectionID, image)
		if err != nil {
			return nil, err
		}
		fields["image"] = ref
	}
	if len(fields) == 0 {
		return candidate, nil
	}

	if err := s.repos.Candidates.UpdateDetails(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.ResultsKey(candidate.ElectionID))
	return s.find(ctx, id)
}

func (s *candidateService) Delete(ctx context.Context, id uuid.UUID) error {
	candidate, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.editableElection(ctx, candidate.ElectionID); err != nil {
		return err
	}

	if err := s.repos.Candidates.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCandidateNotFound
		}
		return fmt.Errorf("delete candidate: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.ResultsKey(candidate.ElectionID))
	return nil
}

func (s *candidateService) saveImage(ctx context.Context, electionID uuid.UUID, image *Upload) (string, error) {
	ref, err := s.store.SaveImage(ctx, "party_"+electionID.String(), image.Filename, image.Content)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return "", apperrors.ErrInvalidFileType
		}
		return "", fmt.Errorf("save image: %w", err)
	}
	return ref, nil
}

// editableElection loads the election and rejects changes once it is certified.
func (s *candidateService) editableElection(ctx context.Context, electionID uuid.UUID) (*model.Election, error) {
	election, err := s.repos.Elections.FindByID(ctx, electionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrElectionNotFound
		}
		return nil, fmt.Errorf("find election: %w", err)
	}
	if election.IsCertified {
		return nil, apperrors.ErrElectionCertified
	}
	return election, nil
}

func (s *candidateService) find(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	candidate, err := s.repos.Candidates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return candidate, nil
}
