// Package main is the entry point for the Posterdesk web front end. It
// loads configuration, opens the session store, wires the plugins and
// starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/posterdesk/internal/app"
	"github.com/keyxmakerx/posterdesk/internal/config"
	"github.com/keyxmakerx/posterdesk/internal/database"
	"github.com/keyxmakerx/posterdesk/internal/plugins/auth"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg.IsDevelopment())

	slog.Info("starting Posterdesk",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("user_api", cfg.Upstream.UserAPIURL),
		slog.String("poster_api", cfg.Upstream.PosterAPIBase),
	)

	// --- Session Store ---
	var store auth.SessionStore
	var rdb *redis.Client
	if cfg.Auth.SessionStore == "memory" {
		slog.Warn("using in-memory session store; sessions are lost on restart")
		store = auth.NewMemorySessionStore()
	} else {
		rdb, err = database.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to Redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		slog.Info("connected to Redis")
		store = auth.NewRedisSessionStore(rdb)
	}

	// --- Create Application ---
	application := app.New(cfg, store, rdb)
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// setupLogging configures the global slog logger. Development uses text
// format for readability. Production uses JSON for log aggregation.
func setupLogging(dev bool) {
	var handler slog.Handler

	if dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	slog.SetDefault(slog.New(handler))
}
