package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// sessionKeyPrefix is the Redis key prefix for session data.
const sessionKeyPrefix = "session:"

// SessionStore persists sessions keyed by their opaque token. Load returns
// an apperror.Unauthorized error when the token is unknown or expired.
type SessionStore interface {
	Save(ctx context.Context, token string, session *Session, ttl time.Duration) error
	Load(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// errSessionMissing is returned by every store for unknown tokens.
func errSessionMissing() error {
	return apperror.NewUnauthorized("session expired or invalid")
}

// --- Redis ---

// RedisSessionStore keeps sessions in Redis as JSON with a key TTL, so
// expiry is enforced by Redis rather than polled.
type RedisSessionStore struct {
	redis *redis.Client
}

// NewRedisSessionStore creates a store backed by the given Redis client.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: rdb}
}

// Save stores the session under the token with the given TTL.
func (s *RedisSessionStore) Save(ctx context.Context, token string, session *Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("marshaling session: %w", err))
	}

	if err := s.redis.Set(ctx, sessionKeyPrefix+token, data, ttl).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing session in Redis: %w", err))
	}
	return nil
}

// Load looks up a session token in Redis.
func (s *RedisSessionStore) Load(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errSessionMissing()
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading session from Redis: %w", err))
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("unmarshaling session: %w", err))
	}

	return &session, nil
}

// Delete removes a session from Redis.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting session from Redis: %w", err))
	}
	return nil
}

// --- In-memory ---

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in a process-local map. Used by tests
// and by single-instance development setups (SESSION_STORE=memory).
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Save stores a copy of the session.
func (s *MemorySessionStore) Save(_ context.Context, token string, session *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{session: *session, expiresAt: s.now().Add(ttl)}
	return nil
}

// Load returns a copy of the stored session. Expired entries are removed.
func (s *MemorySessionStore) Load(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, errSessionMissing()
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, token)
		return nil, errSessionMissing()
	}

	session := entry.session
	return &session, nil
}

// Delete removes the token. Unknown tokens are not an error.
func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
