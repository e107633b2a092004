package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "roomgate-backend/internal/api/http"
	"roomgate-backend/internal/config"
	"roomgate-backend/internal/logger"
	"roomgate-backend/internal/repository"
	"roomgate-backend/internal/repository/memory"
	"roomgate-backend/internal/repository/postgres"
	"roomgate-backend/internal/security"
	"roomgate-backend/internal/service"

	_ "github.com/lib/pq"
)

// repos bundles the repositories the server wires, regardless of which
// storage backend is selected.
type repos struct {
	creators      repository.CreatorRepository
	users         repository.UserRepository
	rooms         repository.RoomRepository
	joinRequests  repository.JoinRequestRepository
	bans          repository.BanRepository
	rateLimits    repository.RateLimitRepository
	notifications repository.NotificationRepository
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RoomGate Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Video configuration", "provider", cfg.Video.Provider, "token_ttl", cfg.Video.TokenTTL())

	// Initialize storage. An empty database host selects the in-memory
	// store (development only).
	var (
		db *sql.DB
		r  repos
	)
	if cfg.Database.Host == "" {
		logger.Info("Using in-memory store (no database host configured)")
		mem := memory.NewStore()
		r = repos{
			creators:      mem.Creators(),
			users:         mem.Users(),
			rooms:         mem.Rooms(),
			joinRequests:  mem.JoinRequests(),
			bans:          mem.Bans(),
			rateLimits:    mem.RateLimits(),
			notifications: mem.Notifications(),
		}
	} else {
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err = sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Error("Failed to ping database", "error", err)
			log.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established")

		store := postgres.NewStore(db)
		r = repos{
			creators:      store.CreatorRepository,
			users:         store.UserRepository,
			rooms:         store.RoomRepository,
			joinRequests:  store.JoinRequestRepository,
			bans:          store.BanRepository,
			rateLimits:    store.RateLimitRepository,
			notifications: store.NotificationRepository,
		}
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Video Provider
	videoProvider, err := service.NewVideoProvider(cfg.Video)
	if err != nil {
		logger.Error("Failed to initialize video provider", "error", err)
		log.Fatalf("Failed to initialize video provider: %v", err)
	}

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.Email.APIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)

	// Initialize Services
	banSvc := service.NewBanService(r.bans)
	limiter := service.NewRateLimiter(r.rateLimits)
	billingSvc := service.NewBillingService(r.creators)
	noteSvc := service.NewNotificationService(r.notifications)
	lifecycleSvc := service.NewLifecycleController(
		r.joinRequests,
		r.creators,
		r.users,
		r.rooms,
		r.notifications,
		videoProvider,
		emailSvc,
		cfg.Video.TokenTTL(),
	)
	engine := service.NewAccessDecisionEngine(
		r.creators,
		r.users,
		r.rooms,
		r.joinRequests,
		r.notifications,
		banSvc,
		limiter,
		billingSvc,
		lifecycleSvc,
		emailSvc,
		service.EngineConfig{
			JoinRequestsEnabled: cfg.Platform.JoinRequestsEnabled,
			RateLimitMax:        int32(cfg.RateLimit.JoinMaxRequests),
			RateLimitWindow:     cfg.RateLimit.JoinWindow(),
		},
	)

	// Initialize HTTP handlers and router
	handler := httpapi.NewRouter(httpapi.RouterDeps{
		Join:          httpapi.NewJoinHandler(engine, lifecycleSvc),
		Creator:       httpapi.NewCreatorHandler(lifecycleSvc, banSvc),
		Notifications: httpapi.NewNotificationHandler(noteSvc),
		TokenManager:  tokenManager,
		DB:            db,
		EdgeBurst:     cfg.RateLimit.EdgeBurst,
		EdgePerSecond: cfg.RateLimit.EdgePerSecond,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), handler); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
