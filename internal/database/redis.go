package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/posterdesk/internal/config"
)

// NewRedis returns a client for the session store once Redis answers PING.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	return newRedis(ctx, cfg, startupBackoff)
}

func newRedis(ctx context.Context, cfg config.RedisConfig, b backoff) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := pingUntilReady(ctx, "redis", b, ping); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
