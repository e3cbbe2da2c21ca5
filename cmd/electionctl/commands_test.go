package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvote/internal/auth"
	"campusvote/internal/model"
	"campusvote/internal/repository"
	"campusvote/internal/service"
	"campusvote/internal/sms"
	"campusvote/internal/testutil"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *repository.Repositories) {
	t.Helper()
	gormDB := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(gormDB)
	out := &bytes.Buffer{}
	return &app{
		out:       out,
		elections: service.NewElectionService(repos, nil),
		results:   service.NewResultService(repos, nil, time.Second),
		reconcile: service.NewReconcileService(repos, nil),
		auth: service.NewAuthService(
			repos.Users,
			auth.NewJWTService("test-secret"),
			auth.NewTokenStore(nil),
			service.NewOTPService(repos.OTPs, sms.LogSender{}, ""),
			false,
		),
	}, out, repos
}

func TestDispatch_Results(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()
	election, err := a.elections.Create(ctx, "Guild Treasurer", time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, a.dispatch(ctx, "results", []string{election.ID.String()}))
	assert.Contains(t, out.String(), "Results for "+election.ID.String())
	assert.Contains(t, out.String(), "turnout 0%")
}

func TestDispatch_CreateAdmin(t *testing.T) {
	a, out, repos := newTestApp(t)
	ctx := context.Background()

	err := a.dispatch(ctx, "create-admin", []string{
		"--name", "Registrar",
		"--email", "registrar@campus.example.edu",
		"--phone", "+254700000999",
		"--password", "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Admin registrar@campus.example.edu created")

	user, err := repos.Users.FindByEmail(ctx, "registrar@campus.example.edu")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestDispatch_Usage(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.dispatch(ctx, "frobnicate", nil), errUsage)
	assert.ErrorIs(t, a.dispatch(ctx, "results", nil), errUsage)
	assert.ErrorIs(t, a.dispatch(ctx, "create-admin", []string{"--name", "x"}), errUsage)
}

func TestDispatch_ReconcileAndStats(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()

	election, err := a.elections.Create(ctx, "Sports Captain", time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, a.dispatch(ctx, "reconcile", []string{election.ID.String(), "--fix"}))
	assert.Contains(t, out.String(), "Tallies are consistent")

	require.NoError(t, a.dispatch(ctx, "stats", nil))
	assert.Contains(t, out.String(), "Participation")

	require.NoError(t, a.dispatch(ctx, "elections", []string{"--status", "pending"}))
	assert.Contains(t, out.String(), "Sports Captain")
}
