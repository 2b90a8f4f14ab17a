package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	journalrepo "graphclick/internal/gateway/repository/journal"
)

var ErrInvalidSession = errors.New("session id is required")

const DefaultCapacity = 1024

type Config struct {
	Click clickgate.Config
	Gate  clickgate.GateConfig
	// Capacity bounds the number of live sessions. The least recently used
	// session is closed when a new one would exceed it.
	Capacity int
}

func (c Config) clock() clickgate.Clock {
	if c.Click.Clock != nil {
		return c.Click.Clock
	}
	return clickgate.RealClock()
}

// Registry owns the live sessions.
type Registry struct {
	cfg   Config
	store journalrepo.Store
	log   *zap.Logger

	mu       sync.Mutex
	sessions *lru.Cache[string, *Session]
}

func NewRegistry(cfg Config, store journalrepo.Store, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	cache, err := lru.NewWithEvict[string, *Session](cfg.Capacity, func(_ string, s *Session) {
		s.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Registry{
		cfg:      cfg,
		store:    store,
		log:      log,
		sessions: cache,
	}, nil
}

// Open returns the session with id, creating it if needed. A new session
// starts polling for its widget immediately.
func (r *Registry) Open(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidSession
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions.Get(id); ok {
		return s, nil
	}
	s := newSession(id, r.cfg, r.store, r.log)
	r.sessions.Add(id, s)
	r.log.Debug("session opened", zap.String("session", id), zap.Int("live", r.sessions.Len()))
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	return r.sessions.Peek(strings.TrimSpace(id))
}

// Remove closes and forgets the session if s is still the registered one.
func (r *Registry) Remove(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions.Peek(s.id); ok && cur == s {
		r.sessions.Remove(s.id)
		return
	}
	s.Close()
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Purge()
}
