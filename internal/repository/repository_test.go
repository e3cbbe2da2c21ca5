package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusvote/internal/model"
	"campusvote/internal/testutil"
)

func TestUserRepository_MarkVotedIsConditional(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repo := NewUserRepository(gormDB)
	ctx := context.Background()

	voter := testutil.CreateTestUser(t, gormDB, model.RoleVoter)
	first, second := uuid.New(), uuid.New()

	marked, err := repo.MarkVoted(ctx, voter.ID, first)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.MarkVoted(ctx, voter.ID, second)
	require.NoError(t, err)
	assert.False(t, marked, "a voter is only marked once")

	reloaded := testutil.ReloadUser(t, gormDB, voter.ID)
	assert.True(t, reloaded.HasVoted)
	require.NotNil(t, reloaded.VotedCandidateID)
	assert.Equal(t, first, *reloaded.VotedCandidateID)

	reset, err := repo.ResetAllVotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)
	assert.False(t, testutil.ReloadUser(t, gormDB, voter.ID).HasVoted)
}

func TestUserRepository_FindByPhoneSuffix(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repo := NewUserRepository(gormDB)

	voter := testutil.CreateTestUser(t, gormDB, model.RoleVoter)
	suffix := voter.Phone[len(voter.Phone)-9:]

	found, err := repo.FindByPhoneSuffix(context.Background(), suffix)
	require.NoError(t, err)
	assert.Equal(t, voter.ID, found.ID)

	for _, wildcard := range []string{"%", "_________", "%" + suffix[1:], "_" + suffix[1:]} {
		_, err := repo.FindByPhoneSuffix(context.Background(), wildcard)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "wildcards match literally: %q", wildcard)
	}
}

func TestCandidateRepository_Counters(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repo := NewCandidateRepository(gormDB)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gormDB, model.ElectionStatusActive, time.Now().Add(time.Hour))
	candidate := testutil.AddTestCandidate(t, gormDB, election.ID, "Alice", 4)

	ok, err := repo.IncrementVoteCount(ctx, candidate.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok, "increment is scoped to the candidate's election")

	ok, err = repo.IncrementVoteCount(ctx, candidate.ID, election.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), testutil.ReloadCandidate(t, gormDB, candidate.ID).VoteCount)

	raised, err := repo.RaiseVoteCount(ctx, candidate.ID, 3)
	require.NoError(t, err)
	assert.False(t, raised, "counters are never lowered")

	raised, err = repo.RaiseVoteCount(ctx, candidate.ID, 7)
	require.NoError(t, err)
	assert.True(t, raised)
	assert.Equal(t, int64(7), testutil.ReloadCandidate(t, gormDB, candidate.ID).VoteCount)

	require.NoError(t, repo.UpdateDetails(ctx, candidate.ID, map[string]interface{}{"name": "Alicia", "vote_count": 0}))
	reloaded := testutil.ReloadCandidate(t, gormDB, candidate.ID)
	assert.Equal(t, "Alicia", reloaded.Name)
	assert.Equal(t, int64(7), reloaded.VoteCount)
}

func TestCandidateRepository_ListByElectionStandings(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repo := NewCandidateRepository(gormDB)

	election := testutil.CreateTestElection(t, gormDB, model.ElectionStatusEnded, time.Now())
	a := testutil.AddTestCandidate(t, gormDB, election.ID, "A", 8)
	b := testutil.AddTestCandidate(t, gormDB, election.ID, "B", 22)
	c := testutil.AddTestCandidate(t, gormDB, election.ID, "C", 15)
	d := testutil.AddTestCandidate(t, gormDB, election.ID, "D", 22)

	got, err := repo.ListByElection(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []uuid.UUID{b.ID, d.ID, c.ID, a.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestElectionRepository_CertifyOnce(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repo := NewElectionRepository(gormDB)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gormDB, model.ElectionStatusEnded, time.Now())
	winner := uuid.New()

	ok, err := repo.Certify(ctx, election.ID, winner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Certify(ctx, election.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, election.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCertified)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, winner, *stored.WinnerID)
}

func TestRepositories_WithTransactionRollsBack(t *testing.T) {
	gormDB := testutil.SetupTestDB(t)
	repos := NewRepositories(gormDB)
	ctx := context.Background()

	voter := testutil.CreateTestUser(t, gormDB, model.RoleVoter)
	boom := errors.New("boom")

	err := repos.WithTransaction(ctx, func(ctx context.Context, tx *Repositories) error {
		marked, err := tx.Users.MarkVoted(ctx, voter.ID, uuid.New())
		require.NoError(t, err)
		require.True(t, marked)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, testutil.ReloadUser(t, gormDB, voter.ID).HasVoted)
}
