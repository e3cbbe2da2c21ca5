package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/repository"
	"campusvote/internal/testutil"
)

func TestElectionService_Create(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	svc := NewElectionService(repository.NewRepositories(gormDB), nil)
	start := time.Now()

	tests := []struct {
		name    string
		title   string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"valid", "Student Council 2026", start, start.Add(48 * time.Hour), nil},
		{"blank title", "  ", start, start.Add(time.Hour), apperrors.ErrInvalidElection},
		{"end before start", "Backwards", start, start.Add(-time.Hour), apperrors.ErrInvalidElection},
		{"missing end", "Open ended", start, time.Time{}, apperrors.ErrInvalidElection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			election, err := svc.Create(context.Background(), tt.title, tt.start, tt.end)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, election.ID)
			assert.Equal(t, model.ElectionStatusPending, election.Status)
			assert.False(t, election.IsCertified)
		})
	}
}

func TestElectionService_ListFiltersByStatus(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	svc := NewElectionService(repository.NewRepositories(gormDB), nil)
	future := time.Now().Add(time.Hour)

	testutil.CreateTestElection(t, gormDB, model.ElectionStatusPending, future)
	active := testutil.CreateTestElection(t, gormDB, model.ElectionStatusActive, future)
	testutil.CreateTestElection(t, gormDB, model.ElectionStatusEnded, future)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyActive, err := svc.List(context.Background(), model.ElectionStatusActive)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	_, err = svc.List(context.Background(), "archived")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestElectionService_Update(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	svc := NewElectionService(repository.NewRepositories(gormDB), nil)
	election := testutil.CreateTestElection(t, gormDB, model.ElectionStatusPending, time.Now().Add(time.Hour))

	active := model.ElectionStatusActive
	updated, err := svc.Update(context.Background(), election.ID, ElectionPatch{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, model.ElectionStatusActive, updated.Status)

	bogus := model.ElectionStatus("paused")
	_, err = svc.Update(context.Background(), election.ID, ElectionPatch{Status: &bogus})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	early := election.StartDate.Add(-time.Hour)
	_, err = svc.Update(context.Background(), election.ID, ElectionPatch{EndDate: &early})
	assert.ErrorIs(t, err, apperrors.ErrInvalidElection)

	_, err = svc.Update(context.Background(), uuid.New(), ElectionPatch{Status: &active})
	assert.ErrorIs(t, err, apperrors.ErrElectionNotFound)
}

func TestElectionService_Certify(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	svc := NewElectionService(repository.NewRepositories(gormDB), nil)

	election := testutil.CreateTestElection(t, gormDB, model.ElectionStatusEnded, time.Now().Add(-time.Hour))
	testutil.AddTestCandidate(t, gormDB, election.ID, "A", 8)
	b := testutil.AddTestCandidate(t, gormDB, election.ID, "B", 22)
	testutil.AddTestCandidate(t, gormDB, election.ID, "C", 15)

	certified, winner, err := svc.Certify(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, winner.ID)
	assert.True(t, certified.IsCertified)
	require.NotNil(t, certified.WinnerID)
	assert.Equal(t, b.ID, *certified.WinnerID)

	stored, err := svc.Get(context.Background(), election.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCertified)
	assert.Equal(t, b.ID, *stored.WinnerID)
	assert.Equal(t, "B", stored.Candidates[0].Name)

	_, _, err = svc.Certify(context.Background(), election.ID)
	assert.ErrorIs(t, err, apperrors.ErrElectionCertified)

	title := "Renamed"
	_, err = svc.Update(context.Background(), election.ID, ElectionPatch{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrElectionCertified)
}

func TestElectionService_CertifyTieGoesToEarliestCandidate(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	svc := NewElectionService(repository.NewRepositories(gormDB), nil)

	election := testutil.CreateTestElection(t, gormDB, model.ElectionStatusEnded, time.Now().Add(-time.Hour))
	first := testutil.AddTestCandidate(t, gormDB, election.ID, "First", 10)
	testutil.AddTestCandidate(t, gormDB, election.ID, "Second", 10)
	testutil.AddTestCandidate(t, gormDB, election.ID, "Third", 3)

	_, winner, err := svc.Certify(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, winner.ID)
}

func TestElectionService_CertifyPreconditions(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	svc := NewElectionService(repository.NewRepositories(gormDB), nil)
	future := time.Now().Add(time.Hour)

	pending := testutil.CreateTestElection(t, gormDB, model.ElectionStatusPending, future)
	testutil.AddTestCandidate(t, gormDB, pending.ID, "A", 1)
	active := testutil.CreateTestElection(t, gormDB, model.ElectionStatusActive, future)
	testutil.AddTestCandidate(t, gormDB, active.ID, "A", 1)
	empty := testutil.CreateTestElection(t, gormDB, model.ElectionStatusEnded, time.Now().Add(-time.Hour))

	tests := []struct {
		name string
		id   uuid.UUID
		want error
	}{
		{"pending", pending.ID, apperrors.ErrElectionNotEnded},
		{"active", active.ID, apperrors.ErrElectionNotEnded},
		{"no candidates", empty.ID, apperrors.ErrNoCandidates},
		{"missing", uuid.New(), apperrors.ErrElectionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Certify(context.Background(), tt.id)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := svc.Get(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCertified)
	assert.Nil(t, stored.WinnerID)
}

func TestElectionService_DeleteResetsEveryVoter(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(gormDB)
	svc := NewElectionService(repos, nil)
	votes := newVoteService(t, gormDB, nil, nil)
	future := time.Now().Add(time.Hour)

	doomed := testutil.CreateTestElection(t, gormDB, model.ElectionStatusActive, future)
	doomedCandidate := testutil.AddTestCandidate(t, gormDB, doomed.ID, "A", 0)
	survivor := testutil.CreateTestElection(t, gormDB, model.ElectionStatusActive, future)
	survivorCandidate := testutil.AddTestCandidate(t, gormDB, survivor.ID, "B", 0)

	inDoomed := testutil.CreateTestUser(t, gormDB, model.RoleVoter)
	inSurvivor := testutil.CreateTestUser(t, gormDB, model.RoleVoter)
	require.NoError(t, votes.CastVote(context.Background(), inDoomed.ID, doomed.ID, doomedCandidate.ID))
	require.NoError(t, votes.CastVote(context.Background(), inSurvivor.ID, survivor.ID, survivorCandidate.ID))

	require.NoError(t, svc.Delete(context.Background(), doomed.ID))

	for _, id := range []uuid.UUID{inDoomed.ID, inSurvivor.ID} {
		user := testutil.ReloadUser(t, gormDB, id)
		assert.False(t, user.HasVoted)
		assert.Nil(t, user.VotedCandidateID)
	}

	_, err := svc.Get(context.Background(), doomed.ID)
	assert.ErrorIs(t, err, apperrors.ErrElectionNotFound)
	_, err = repos.Candidates.FindByID(context.Background(), doomedCandidate.ID)
	assert.Error(t, err)

	// counters of other elections are left alone
	assert.Equal(t, int64(1), testutil.ReloadCandidate(t, gormDB, survivorCandidate.ID).VoteCount)

	assert.ErrorIs(t, svc.Delete(context.Background(), doomed.ID), apperrors.ErrElectionNotFound)
}
