package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkpost/inkpost-backend/internal/api"
	"github.com/inkpost/inkpost-backend/internal/auth"
	"github.com/inkpost/inkpost-backend/internal/blog"
	"github.com/inkpost/inkpost-backend/internal/config"
	gdb "github.com/inkpost/inkpost-backend/internal/db"
	"github.com/inkpost/inkpost-backend/internal/jobs"
	"github.com/inkpost/inkpost-backend/internal/log"
	"github.com/inkpost/inkpost-backend/internal/media"
	"github.com/inkpost/inkpost-backend/internal/metrics"
	"github.com/inkpost/inkpost-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting inkpost API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"db", cfg.Database.Type,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("inkpost-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Initialize database
	database, err := gdb.NewDatabase(&gdb.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.PostgresDSN,
	})
	if err != nil {
		logger.Fatalw("Failed to create database", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, database, gdb.AllSchemas()); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	logger.Infow("Database initialized")

	// Setup cache
	cache, err := store.NewCache(cfg.Cache.RedisAddr, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to setup cache", "error", err)
	}
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		logger.Fatalw("Cache ping failed", "error", err)
	}
	logger.Infow("Cache connection established")

	// Setup media storage
	storage, err := media.NewStorage(cfg.Media.Dir, logger)
	if err != nil {
		logger.Fatalw("Failed to setup media storage", "error", err)
	}

	// Setup domain services
	repos := blog.NewRepositories(database)
	policy := auth.PasswordPolicy{MinLength: cfg.Auth.PasswordMinLength}

	userSvc := blog.NewUserService(repos, policy, cfg.API.PageSize, logger)
	postSvc := blog.NewPostService(repos, storage, cfg.API.PageSize, logger)
	commentSvc := blog.NewCommentService(repos, logger)
	categorySvc := blog.NewCategoryService(repos, logger)
	reactionSvc := blog.NewReactionService(repos, logger)
	sessions := auth.NewSessionManager(cache, cfg.Auth.SessionTTL)

	// Start the media sweeper
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()

	sweeper := jobs.NewMediaSweeper(storage, repos.Posts, repos.PostImages, cfg.Media.SweepInterval, logger)
	go sweeper.Run(jobCtx)

	// Setup API handler and middleware
	handler := api.NewHandler(userSvc, postSvc, commentSvc, categorySvc, reactionSvc, sessions, database, cache, cfg, logger, metricsObj)
	middleware := api.NewMiddleware(logger, metricsObj, sessions, userSvc)

	router := handler.Routes(middleware, metricsHandler, cfg.Media.Dir)
	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		jobCancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		if err := database.Disconnect(ctx); err != nil {
			logger.Errorw("Database disconnect failed", "error", err)
		}

		logger.Infow("Server stopped")
	}
}
