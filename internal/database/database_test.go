package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-migrate/migrate/v4"

	"github.com/keyxmakerx/posterdesk/internal/config"
)

var fastBackoff = backoff{attempts: 3, initial: time.Millisecond, max: 2 * time.Millisecond, timeout: time.Second}

func TestPingUntilReady_RecoversAfterFailures(t *testing.T) {
	calls := 0
	err := pingUntilReady(context.Background(), "test", fastBackoff, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 pings, got %d", calls)
	}
}

func TestPingUntilReady_GivesUp(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0
	err := pingUntilReady(context.Background(), "test", fastBackoff, func(context.Context) error {
		calls++
		return refused
	})
	if !errors.Is(err, refused) {
		t.Errorf("expected last ping error, got %v", err)
	}
	if calls != fastBackoff.attempts {
		t.Errorf("expected %d pings, got %d", fastBackoff.attempts, calls)
	}
}

func TestPingUntilReady_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := backoff{attempts: 5, initial: time.Hour, max: time.Hour, timeout: time.Second}

	calls := 0
	err := pingUntilReady(ctx, "test", slow, func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 ping before cancel, got %d", calls)
	}
}

func TestNewRedis_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := newRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()}, fastBackoff)
	if err != nil {
		t.Fatalf("newRedis: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("client unusable: %v", err)
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := newRedis(context.Background(), config.RedisConfig{URL: "::not a url"}, fastBackoff); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := newRedis(context.Background(), config.RedisConfig{URL: "redis://" + addr}, fastBackoff); err == nil {
		t.Error("expected error for a stopped server")
	}
}

func TestCheckVersion(t *testing.T) {
	if v, err := checkVersion(0, false, migrate.ErrNilVersion); err != nil || v != 0 {
		t.Errorf("fresh database: got %d, %v", v, err)
	}
	if v, err := checkVersion(2, false, nil); err != nil || v != 2 {
		t.Errorf("clean database: got %d, %v", v, err)
	}
	if _, err := checkVersion(2, true, nil); !errors.Is(err, ErrDirtySchema) {
		t.Errorf("dirty database: expected ErrDirtySchema, got %v", err)
	}
	boom := errors.New("boom")
	if _, err := checkVersion(0, false, boom); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
