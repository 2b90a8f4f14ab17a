package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps the last perSession records of every session.
type MemoryStore struct {
	mu         sync.RWMutex
	perSession int
	bySession  map[string][]Record
}

func NewMemoryStore(perSession int) *MemoryStore {
	if perSession <= 0 {
		perSession = 1000
	}
	return &MemoryStore{
		perSession: perSession,
		bySession:  make(map[string][]Record),
	}
}

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	id := normalizeSessionID(rec.SessionID)
	if id == "" {
		return ErrInvalidSession
	}
	rec.SessionID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	recs := append(s.bySession[id], rec)
	if over := len(recs) - s.perSession; over > 0 {
		recs = append([]Record(nil), recs[over:]...)
	}
	s.bySession[id] = recs
	return nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string, limit int) ([]Record, error) {
	id := normalizeSessionID(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}
	limit = normalizeLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.bySession[id]
	if len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}
