package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "campusvote/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"campusvote/internal/auth"
	"campusvote/internal/broadcast"
	"campusvote/internal/cache"
	"campusvote/internal/config"
	"campusvote/internal/db"
	"campusvote/internal/handler"
	"campusvote/internal/repository"
	"campusvote/internal/router"
	"campusvote/internal/seed"
	"campusvote/internal/service"
	"campusvote/internal/sms"
	"campusvote/internal/storage"
)

const (
	shutdownTimeout  = 10 * time.Second
	liveWriteTimeout = 5 * time.Second
)

// @title Campus Vote API
// @version 1.0
// @description University elections: registration, vote casting, live tallies and certification.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		db.Reset(gormDB)
		log.Println("Tables dropped")
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Votes reach this process's websocket clients directly, or through redis
	// when it is up so every replica sees them.
	hub := broadcast.NewHub()
	var publisher broadcast.Publisher = hub
	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable (%v), live updates stay in-process", err)
	} else {
		publisher = broadcast.NewRedisPublisher(cacheClient, cfg.BroadcastChannel)
		relay := broadcast.NewRelay(cacheClient, cfg.BroadcastChannel, hub)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("broadcast relay stopped: %v", err)
			}
		}()
	}
	cancelPing()

	var sender sms.Sender = sms.LogSender{}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sender = sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}

	store, err := storage.NewLocal(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	// Initialize repositories
	repos := repository.NewRepositories(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	auditLog := service.NewAuditLog(repos.VoteAttempts)
	otpService := service.NewOTPService(repos.OTPs, sender, cfg.OTPBypassCode())
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore, otpService, cfg.RequirePhoneVerification)
	userService := service.NewUserService(repos.Users)
	electionService := service.NewElectionService(repos, cacheClient)
	candidateService := service.NewCandidateService(repos, store, cacheClient)
	voteService := service.NewVoteService(repos, cacheClient, publisher, auditLog, cfg.VoteTimeout, cfg.BroadcastTimeout)
	resultService := service.NewResultService(repos, cacheClient, cfg.ResultsCacheTTL)
	reconcileService := service.NewReconcileService(repos, cacheClient)

	// Register routes
	router.Register(e, cfg, jwtService, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, otpService, userService),
		Users:      handler.NewUserHandler(userService),
		Elections:  handler.NewElectionHandler(electionService),
		Candidates: handler.NewCandidateHandler(candidateService, cfg.MaxUploadBytes),
		Votes:      handler.NewVoteHandler(voteService, resultService, reconcileService),
		Live:       handler.NewLiveHandler(hub, liveWriteTimeout),
		Seed:       handler.NewSeedHandler(seed.NewSeeder(authService, electionService, candidateService)),
	})

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	// flush pending vote attempts after the last request is done
	auditLog.Close()
}

func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
