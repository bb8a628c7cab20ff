package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/jdelgado/geomapa/app/db"
	appLogger "github.com/jdelgado/geomapa/app/logger"
	appMiddleware "github.com/jdelgado/geomapa/app/middleware"
	"github.com/jdelgado/geomapa/app/tracer"
	"github.com/jdelgado/geomapa/config"
	"github.com/jdelgado/geomapa/internal/api/auth"
	"github.com/jdelgado/geomapa/internal/api/geocode"
	"github.com/jdelgado/geomapa/internal/api/marker"
	"github.com/jdelgado/geomapa/internal/api/media"
	"github.com/jdelgado/geomapa/internal/api/web"
	api "github.com/jdelgado/geomapa/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := tracer.InitTracingAndMetrics(cfg.Server.MetricsPort, logger); err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Database Setup ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	sessions, err := auth.NewSessionStore(cfg.Auth.SessionSecret, cfg.Auth.SessionName)
	if err != nil {
		logger.Error("Failed to create session store", slog.Any("error", err))
		os.Exit(1)
	}
	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID, logger)
	authHandler := auth.NewAuthHandler(verifier, sessions, logger)

	geocoder := geocode.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, logger)
	uploader, err := media.NewCloudinaryUploader(
		cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret,
		cfg.Media.Folder, cfg.Media.Timeout, logger,
	)
	if err != nil {
		logger.Error("Failed to create media uploader", slog.Any("error", err))
		os.Exit(1)
	}

	markerRepo := marker.NewMarkerRepository(pool, logger)
	markerService := marker.NewMarkerService(markerRepo, geocoder, uploader, logger)
	markerHandler := marker.NewMarkerHandler(markerService, logger)

	webHandler, err := web.NewWebHandler(markerService, sessions, cfg.Auth.GoogleClientID, logger)
	if err != nil {
		logger.Error("Failed to create web handler", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Router Setup ---
	mainRouter := api.SetupRouter(&api.Config{
		AuthHandler:       authHandler,
		MarkerHandler:     markerHandler,
		WebHandler:        webHandler,
		SessionMiddleware: appMiddleware.RequireSession(sessions),
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}
	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
}
