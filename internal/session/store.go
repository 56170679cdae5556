package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"receptionist-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces session keys in a shared backend.
	DefaultKeyPrefix = "telephony:sess:"

	// DefaultTTL outlives the longest plausible call while still reclaiming
	// abandoned sessions.
	DefaultTTL = 2 * time.Hour
)

// Store is durable, TTL-bound persistence of call sessions.
//
// Semantics:
// - Load returns (nil, nil) for an absent or expired session; absence is a
//   normal outcome, not an error.
// - Save resets the expiry window to the full TTL on every write (sliding
//   expiration), stamps StartedAt once and UpdatedAt always.
// - Clear is idempotent.
//
// Writes are last-write-wins: webhook delivery is sequential per call in
// practice, so no per-call lock is taken. A retried duplicate racing a slow
// write can lose an update; that trade is accepted here.
type Store interface {
	Load(ctx context.Context, callID string) (*CallSession, error)
	Save(ctx context.Context, s *CallSession) error
	Clear(ctx context.Context, callID string) error
}

// RedisStore persists sessions as one JSON blob per call id.
// The client is injected, constructed once at boot and shared process-wide.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// RedisStoreConfig tunes key layout and expiry; zero values take defaults.
type RedisStoreConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

func NewRedisStore(rdb *redis.Client, cfg RedisStoreConfig) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &RedisStore{rdb: rdb, prefix: cfg.KeyPrefix, ttl: cfg.TTL, now: time.Now}
}

func (st *RedisStore) key(callID string) string {
	return st.prefix + callID
}

func (st *RedisStore) Load(ctx context.Context, callID string) (*CallSession, error) {
	if callID == "" {
		return nil, errors.New("session: call id required")
	}
	raw, err := st.rdb.Get(ctx, st.key(callID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s CallSession
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt record reads as absent; the flow restarts cleanly.
		logger.From(ctx).Warn("session record corrupt, treating as absent", "call_id", callID, "err", err)
		return nil, nil
	}
	return &s, nil
}

func (st *RedisStore) Save(ctx context.Context, s *CallSession) error {
	if s == nil || s.CallID == "" {
		return errors.New("session: call id required")
	}
	now := st.now().UTC()
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	s.UpdatedAt = now

	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return st.rdb.Set(ctx, st.key(s.CallID), raw, st.ttl).Err()
}

func (st *RedisStore) Clear(ctx context.Context, callID string) error {
	if callID == "" {
		return nil
	}
	return st.rdb.Del(ctx, st.key(callID)).Err()
}
