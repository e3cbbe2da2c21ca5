// Package seed loads fixture data (accounts, elections and candidates) from YAML.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/service"
)

// Account is a user entry of a fixture.
type Account struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	Password  string `yaml:"password"`
	StudentID string `yaml:"studentId"`
}

// Election is an election entry of a fixture with its candidate names.
type Election struct {
	Title      string    `yaml:"title"`
	Status     string    `yaml:"status"`
	StartDate  time.Time `yaml:"startDate"`
	EndDate    time.Time `yaml:"endDate"`
	Candidates []string  `yaml:"candidates"`
}

// Fixture is the document shape of a seed file.
type Fixture struct {
	Admins    []Account  `yaml:"admins"`
	Voters    []Account  `yaml:"voters"`
	Elections []Election `yaml:"elections"`
}

// Summary counts what Apply created.
type Summary struct {
	Users      int `json:"users"`
	Elections  int `json:"elections"`
	Candidates int `json:"candidates"`
	Skipped    int `json:"skipped"`
}

// Parse decodes a fixture, rejecting unknown fields.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i, e := range f.Elections {
		if e.Status != "" && !model.ElectionStatus(e.Status).Valid() {
			return nil, fmt.Errorf("election %d (%q): %w", i, e.Title, apperrors.ErrInvalidStatus)
		}
	}
	return &f, nil
}

// Seeder applies fixtures through the regular services so every business rule holds.
type Seeder struct {
	auth       service.AuthService
	elections  service.ElectionService
	candidates service.CandidateService
}

// NewSeeder creates a seeder.
func NewSeeder(auth service.AuthService, elections service.ElectionService, candidates service.CandidateService) *Seeder {
	return &Seeder{auth: auth, elections: elections, candidates: candidates}
}

// Apply creates the fixture's content. Existing accounts and elections with an
// already used title are skipped, so applying a fixture twice is harmless.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary

	for _, group := range []struct {
		role     model.Role
		accounts []Account
	}{
		{model.RoleAdmin, f.Admins},
		{model.RoleVoter, f.Voters},
	} {
		for _, a := range group.accounts {
			in := service.RegisterInput{
				Name:     a.Name,
				Email:    a.Email,
				Phone:    a.Phone,
				Password: a.Password,
			}
			if a.StudentID != "" {
				studentID := a.StudentID
				in.StudentID = &studentID
			}
			_, err := s.auth.CreateAccount(ctx, in, group.role)
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				sum.Skipped++
			case err != nil:
				return sum, fmt.Errorf("create %s %s: %w", group.role, a.Email, err)
			default:
				sum.Users++
			}
		}
	}

	existing, err := s.elections.List(ctx, "")
	if err != nil {
		return sum, err
	}
	titles := make(map[string]bool, len(existing))
	for _, e := range existing {
		titles[e.Title] = true
	}

	for _, e := range f.Elections {
		if titles[e.Title] {
			sum.Skipped++
			continue
		}

		election, err := s.elections.Create(ctx, e.Title, e.StartDate, e.EndDate)
		if err != nil {
			return sum, fmt.Errorf("create election %q: %w", e.Title, err)
		}
		titles[e.Title] = true
		sum.Elections++

		for _, name := range e.Candidates {
			if _, err := s.candidates.Add(ctx, election.ID, name, nil); err != nil {
				return sum, fmt.Errorf("add candidate %q to %q: %w", name, e.Title, err)
			}
			sum.Candidates++
		}

		if status := model.ElectionStatus(e.Status); status != "" && status != election.Status {
			if _, err := s.elections.Update(ctx, election.ID, service.ElectionPatch{Status: &status}); err != nil {
				return sum, fmt.Errorf("set status of %q: %w", e.Title, err)
			}
		}
	}

	return sum, nil
}
