// Package main is the entry point for the poster API: the identity,
// history, payment and generation endpoints the web front end calls.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/posterdesk/internal/config"
	"github.com/keyxmakerx/posterdesk/internal/database"
	"github.com/keyxmakerx/posterdesk/internal/middleware"
	"github.com/keyxmakerx/posterdesk/internal/posterapi"
)

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg.IsDevelopment())

	slog.Info("starting poster API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("storage", cfg.Storage.Backend),
		slog.Bool("envelopes", cfg.EnvelopeResponses),
	)

	// --- Connect to MariaDB ---
	db, err := database.NewMariaDB(context.Background(), cfg.Database)
	if err != nil {
		slog.Error("failed to connect to MariaDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to MariaDB")

	version, err := database.RunMigrations(db, cfg.MigrationsPath)
	if err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("schema up to date", slog.Uint64("version", uint64(version)))

	// --- Poster Storage ---
	store, err := posterapi.NewPosterStore(context.Background(), cfg.Storage)
	if err != nil {
		slog.Error("failed to set up poster storage", slog.Any("error", err))
		os.Exit(1)
	}

	service := posterapi.NewService(
		posterapi.NewUserRepository(db),
		posterapi.NewPosterRepository(db),
		posterapi.NewPlaceholderRenderer(),
		store,
		cfg.MaxPromptLen,
	)
	handler := posterapi.NewHandler(service, cfg.EnvelopeResponses)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins}))

	posterapi.RegisterRoutes(e, handler)

	// Locally stored posters are served by this process.
	if local, ok := store.(*posterapi.LocalStore); ok {
		e.Static("/media", local.Root())
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down poster API...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("poster API listening", slog.String("addr", addr))
	if err := e.Start(addr); err != nil {
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// setupLogging configures the global slog logger: text at DEBUG in
// development, JSON at INFO otherwise.
func setupLogging(dev bool) {
	var handler slog.Handler
	if dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}
