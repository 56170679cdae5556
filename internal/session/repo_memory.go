package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory with the same TTL semantics
// as RedisStore. Used in tests and as the degraded fallback when the Redis
// backend is unreachable at boot.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   CallSession
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string]memoryEntry{},
	}
}

func (st *MemoryStore) Load(ctx context.Context, callID string) (*CallSession, error) {
	if callID == "" {
		return nil, errors.New("session: call id required")
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[callID]
	if !ok || st.now().After(e.expiresAt) {
		delete(st.sessions, callID)
		return nil, nil
	}
	out := e.session
	if e.session.Data != nil {
		out.Data = make(map[string]string, len(e.session.Data))
		for k, v := range e.session.Data {
			out.Data[k] = v
		}
	}
	return &out, nil
}

func (st *MemoryStore) Save(ctx context.Context, s *CallSession) error {
	if s == nil || s.CallID == "" {
		return errors.New("session: call id required")
	}
	now := st.now().UTC()
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	s.UpdatedAt = now

	stored := *s
	if s.Data != nil {
		stored.Data = make(map[string]string, len(s.Data))
		for k, v := range s.Data {
			stored.Data[k] = v
		}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.CallID] = memoryEntry{session: stored, expiresAt: now.Add(st.ttl)}
	return nil
}

func (st *MemoryStore) Clear(ctx context.Context, callID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, callID)
	return nil
}
