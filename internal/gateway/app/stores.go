package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	journalcache "graphclick/internal/cache/journal"
	"graphclick/internal/gateway/config"
	journalrepo "graphclick/internal/gateway/repository/journal"
)

const journalOpenTimeout = 10 * time.Second

type gatewayStores struct {
	journal journalrepo.Store
	closers []func() error
}

func initStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	cacheCfg := journalcache.CacheConfig{
		TTL:        cfg.Journal.CacheTTL,
		MaxEntries: cfg.Journal.CacheSize,
	}

	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		ctx, cancel := context.WithTimeout(ctx, journalOpenTimeout)
		defer cancel()
		pg, err := journalrepo.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		log.Info("journal store: postgres")
		return &gatewayStores{
			journal: journalcache.NewCachedStore(pg, cacheCfg),
			closers: []func() error{pg.Close},
		}, nil
	}

	log.Info("journal store: in-memory")
	return &gatewayStores{
		journal: journalcache.NewCachedStore(journalrepo.NewMemoryStore(0), cacheCfg),
	}, nil
}

func (s *gatewayStores) close() {
	for _, c := range s.closers {
		_ = c()
	}
}
