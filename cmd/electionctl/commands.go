package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"campusvote/internal/model"
	"campusvote/internal/service"
)

type app struct {
	out       io.Writer
	elections service.ElectionService
	results   service.ResultService
	reconcile service.ReconcileService
	auth      service.AuthService
}

var (
	heading = color.New(color.FgYellow)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
)

func electionArg(args []string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, fmt.Errorf("expected one election id: %w", errUsage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("election id %q: %w", args[0], err)
	}
	return id, nil
}

func (a *app) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(a.out)
	table.SetHeader(header)
	return table
}

func (a *app) listElections(ctx context.Context, status string) error {
	elections, err := a.elections.List(ctx, model.ElectionStatus(status))
	if err != nil {
		return err
	}

	heading.Fprintln(a.out, "\nElections")
	table := a.table([]string{"ID", "Title", "Status", "Ends", "Certified"})
	for _, e := range elections {
		table.Append([]string{
			e.ID.String(),
			e.Title,
			string(e.Status),
			e.EndDate.Format(time.RFC3339),
			strconv.FormatBool(e.IsCertified),
		})
	}
	table.Render()
	return nil
}

func (a *app) stats(ctx context.Context) error {
	stats, err := a.results.GetAdminStats(ctx)
	if err != nil {
		return err
	}

	heading.Fprintln(a.out, "\nParticipation")
	table := a.table([]string{"Voters", "Voted", "Elections", "Participation %"})
	table.Append([]string{
		strconv.FormatInt(stats.TotalVoters, 10),
		strconv.FormatInt(stats.TotalVoted, 10),
		strconv.FormatInt(stats.ElectionsCount, 10),
		stats.ParticipationRate,
	})
	table.Render()
	return nil
}

func (a *app) electionResults(ctx context.Context, electionID uuid.UUID) error {
	results, err := a.results.GetResults(ctx, electionID)
	if err != nil {
		return err
	}

	heading.Fprintf(a.out, "\nResults for %s\n", electionID)
	table := a.table([]string{"Rank", "Candidate", "Votes"})
	for i, c := range results.Candidates {
		table.Append([]string{strconv.Itoa(i + 1), c.Name, strconv.FormatInt(c.VoteCount, 10)})
	}
	table.Render()
	fmt.Fprintf(a.out, "Total votes: %d of %d eligible (turnout %s%%)\n",
		results.TotalVotes, results.TotalEligibleVoters, results.TurnoutPercent)
	return nil
}

func (a *app) reconcileElection(ctx context.Context, electionID uuid.UUID, fix bool) error {
	report, err := a.reconcile.Reconcile(ctx, electionID, fix)
	if err != nil {
		return err
	}

	heading.Fprintf(a.out, "\nTally reconciliation for %s\n", electionID)
	table := a.table([]string{"Candidate", "Counter", "Recorded", "Drift", "Fixed"})
	for _, c := range report.Candidates {
		table.Append([]string{
			c.Name,
			strconv.FormatInt(c.Counted, 10),
			strconv.FormatInt(c.Recorded, 10),
			strconv.FormatInt(c.Drift, 10),
			strconv.FormatBool(c.Fixed),
		})
	}
	table.Render()

	if report.Consistent {
		good.Fprintln(a.out, "Tallies are consistent")
	} else {
		bad.Fprintf(a.out, "Drift detected, %d candidate(s) fixed\n", report.Fixed)
	}
	return nil
}

func (a *app) createAdmin(ctx context.Context, in service.RegisterInput) error {
	user, err := a.auth.CreateAccount(ctx, in, model.RoleAdmin)
	if err != nil {
		return err
	}
	good.Fprintf(a.out, "Admin %s created (%s)\n", user.Email, user.ID)
	return nil
}
