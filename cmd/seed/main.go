package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"campusvote/internal/auth"
	"campusvote/internal/cache"
	"campusvote/internal/config"
	"campusvote/internal/db"
	"campusvote/internal/repository"
	"campusvote/internal/seed"
	"campusvote/internal/service"
	"campusvote/internal/sms"
	"campusvote/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	file := flags.StringP("file", "f", "fixtures/seed.yaml", "YAML fixture to load")
	reset := flags.Bool("reset", false, "drop every table before seeding")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	fixture, err := seed.Parse(data)
	if err != nil {
		return err
	}

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	log.Println("Connected to database")

	if *reset {
		db.Reset(gormDB)
		log.Println("Tables dropped")
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	store, err := storage.NewLocal(cfg.UploadDir, "/uploads")
	if err != nil {
		return err
	}

	repos := repository.NewRepositories(gormDB)
	authService := service.NewAuthService(
		repos.Users,
		auth.NewJWTService(cfg.JWTSecret),
		auth.NewTokenStore(cacheClient),
		service.NewOTPService(repos.OTPs, sms.LogSender{}, ""),
		false,
	)
	seeder := seed.NewSeeder(
		authService,
		service.NewElectionService(repos, cacheClient),
		service.NewCandidateService(repos, store, cacheClient),
	)

	log.Printf("Seeding %s into database...", *file)
	summary, err := seeder.Apply(context.Background(), fixture)
	if err != nil {
		return err
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users created: %d", summary.Users)
	log.Printf("  - Elections created: %d", summary.Elections)
	log.Printf("  - Candidates created: %d", summary.Candidates)
	log.Printf("  - Existing entries skipped: %d", summary.Skipped)
	return nil
}
