package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/config"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/db"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/handlers"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/live"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/repositories"
	api "github.com/dowdarts/CGC-Tournament-Manager-sub000/routes"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/services"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, driver, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established", slog.String("driver", driver))

	dialect := repositories.Dialect(driver)
	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = repositories.EnsureSchema(schemaCtx, dbConn, dialect)
	cancelSchema()
	if err != nil {
		logger.Error("failed to ensure database schema", slog.Any("error", err))
		os.Exit(1)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	var store storage.ObjectStore
	if cfg.R2.Enabled() {
		store, err = storage.NewR2Store(appCtx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("bracket snapshots go to Cloudflare R2", slog.String("bucket", cfg.R2.BucketName))
	} else {
		store = storage.NewMemoryStore(fmt.Sprintf("http://localhost:%d/snapshots", cfg.ServerPort))
		logger.Warn("R2 is not configured, bracket snapshots are kept in memory")
	}

	wsHub := live.NewHub()
	go wsHub.Run(appCtx)
	logger.Info("WebSocket hub started")

	tournamentRepo := repositories.NewTournamentRepository(dbConn, dialect)
	entrantRepo := repositories.NewEntrantRepository(dbConn, dialect)
	fixtureRepo := repositories.NewFixtureRepository(dbConn, dialect)
	knockoutRepo := repositories.NewKnockoutRepository(dbConn, dialect)

	authService := services.NewAuthService(cfg.OrganizerName, cfg.OrganizerPasswordHash, logger)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, entrantRepo, fixtureRepo, knockoutRepo, logger)
	locks := services.NewTournamentLocks()
	groupService := services.NewGroupService(dbConn, tournamentRepo, entrantRepo, fixtureRepo, wsHub, locks, logger)
	knockoutService := services.NewKnockoutService(
		dbConn,
		tournamentRepo,
		entrantRepo,
		fixtureRepo,
		knockoutRepo,
		wsHub,
		services.NewSnapshotPublisher(store, logger),
		locks,
		logger,
	)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Group:      handlers.NewGroupHandler(groupService),
		Knockout:   handlers.NewKnockoutHandler(knockoutService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
	}, api.Options{
		JWTSecret:          []byte(cfg.JWTSecretKey),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ResultRateLimit:    cfg.ResultRateLimit,
		ResultRateWindow:   cfg.ResultRateWindow,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		stopApp()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
