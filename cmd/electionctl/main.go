// Command electionctl is the operator CLI: participation stats, election
// results, tally reconciliation and admin account creation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"campusvote/internal/auth"
	"campusvote/internal/cache"
	"campusvote/internal/config"
	"campusvote/internal/db"
	"campusvote/internal/repository"
	"campusvote/internal/service"
	"campusvote/internal/sms"
)

const usage = `usage: electionctl <command> [flags]

commands:
  elections [--status S]            list elections
  stats                             system wide participation
  results <election-id>             tallies and turnout
  reconcile <election-id> [--fix]   compare counters with recorded votes
  create-admin --name N --email E --phone P --password X
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatalf("electionctl: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		return errUsage
	}

	cfg := config.Load()
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	repos := repository.NewRepositories(gormDB)
	a := &app{
		out:       os.Stdout,
		elections: service.NewElectionService(repos, cacheClient),
		results:   service.NewResultService(repos, cacheClient, cfg.ResultsCacheTTL),
		reconcile: service.NewReconcileService(repos, cacheClient),
		auth: service.NewAuthService(
			repos.Users,
			auth.NewJWTService(cfg.JWTSecret),
			auth.NewTokenStore(cacheClient),
			service.NewOTPService(repos.OTPs, sms.LogSender{}, ""),
			cfg.RequirePhoneVerification,
		),
	}
	return a.dispatch(ctx, args[0], args[1:])
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)

	switch command {
	case "elections":
		status := flags.String("status", "", "pending, active or ended")
		if err := flags.Parse(args); err != nil {
			return err
		}
		return a.listElections(ctx, *status)

	case "stats":
		if err := flags.Parse(args); err != nil {
			return err
		}
		return a.stats(ctx)

	case "results":
		if err := flags.Parse(args); err != nil {
			return err
		}
		id, err := electionArg(flags.Args())
		if err != nil {
			return err
		}
		return a.electionResults(ctx, id)

	case "reconcile":
		fix := flags.Bool("fix", false, "raise undercounted candidates to the recorded votes")
		if err := flags.Parse(args); err != nil {
			return err
		}
		id, err := electionArg(flags.Args())
		if err != nil {
			return err
		}
		return a.reconcileElection(ctx, id, *fix)

	case "create-admin":
		var in service.RegisterInput
		flags.StringVar(&in.Name, "name", "", "display name")
		flags.StringVar(&in.Email, "email", "", "login email")
		flags.StringVar(&in.Phone, "phone", "", "phone number")
		flags.StringVar(&in.Password, "password", "", "initial password")
		if err := flags.Parse(args); err != nil {
			return err
		}
		if in.Name == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
			return fmt.Errorf("create-admin needs --name, --email, --phone and --password: %w", errUsage)
		}
		return a.createAdmin(ctx, in)

	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}
