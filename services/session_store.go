package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps server-side sessions: session id -> profile id.
type SessionStore interface {
	Create(ctx context.Context, profileID string, ttl time.Duration) (string, error)
	Resolve(ctx context.Context, sessionID string) (string, error)
	Destroy(ctx context.Context, sessionID string) error
}

type memorySession struct {
	profileID string
	expiresAt time.Time
}

// MemorySessionStore is an in-process SessionStore for development and tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, profileID string, ttl time.Duration) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memorySession{profileID: profileID, expiresAt: s.now().Add(ttl)}
	return id, nil
}

func (s *MemorySessionStore) Resolve(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return "", ErrSessionNotFound
	}
	if s.now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return "", ErrSessionNotFound
	}
	return sess.profileID, nil
}

func (s *MemorySessionStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// CleanupExpired drops expired sessions and returns how many were removed.
func (s *MemorySessionStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanupExpired every interval until ctx is done.
func (s *MemorySessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}

const redisSessionPrefix = "session:"

// RedisSessionStore keeps sessions in redis with a key TTL, so expiry is enforced by redis.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Create(ctx context.Context, profileID string, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, redisSessionPrefix+id, profileID, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Resolve(ctx context.Context, sessionID string) (string, error) {
	profileID, err := s.rdb.Get(ctx, redisSessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return profileID, nil
}

func (s *RedisSessionStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, redisSessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
