package journal

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	journalrepo "graphclick/internal/gateway/repository/journal"
)

type Store = journalrepo.Store

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        time.Minute,
		MaxEntries: 1024,
	}
}

type cachedList struct {
	limit int
	recs  []journalrepo.Record
}

const versionStripes = 64

// CachedStore caches List results per session. Appends invalidate the
// session's entry. A List that overlapped an Append of the same session
// returns its result without caching it.
type CachedStore struct {
	origin Store
	lists  *expirable.LRU[string, cachedList]

	mu       sync.Mutex
	versions [versionStripes]uint64
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		lists:  expirable.NewLRU[string, cachedList](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Append(ctx context.Context, rec journalrepo.Record) error {
	if err := s.origin.Append(ctx, rec); err != nil {
		return err
	}
	key := strings.TrimSpace(rec.SessionID)
	s.mu.Lock()
	s.versions[stripe(key)]++
	s.lists.Remove(key)
	s.mu.Unlock()
	return nil
}

func (s *CachedStore) List(ctx context.Context, sessionID string, limit int) ([]journalrepo.Record, error) {
	key := strings.TrimSpace(sessionID)
	if limit <= 0 {
		limit = journalrepo.DefaultListLimit
	}
	if hit, ok := s.lists.Get(key); ok {
		// A short result holds the whole journal, so any limit can be served.
		if limit <= hit.limit || len(hit.recs) < hit.limit {
			return tail(hit.recs, limit), nil
		}
	}
	start := s.version(key)
	recs, err := s.origin.List(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.versions[stripe(key)] == start {
		s.lists.Add(key, cachedList{limit: limit, recs: tail(recs, limit)})
	}
	s.mu.Unlock()
	return tail(recs, limit), nil
}

func (s *CachedStore) version(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[stripe(key)]
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % versionStripes
}

func tail(recs []journalrepo.Record, limit int) []journalrepo.Record {
	if len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	out := make([]journalrepo.Record, len(recs))
	copy(out, recs)
	return out
}
