package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	journalrepo "graphclick/internal/gateway/repository/journal"
)

const (
	journalQueue        = 256
	journalWriteTimeout = 5 * time.Second
)

// journalWriter appends posted notifications to the journal off the
// classifier's path. Records that do not fit in the queue are dropped.
type journalWriter struct {
	sessionID string
	store     journalrepo.Store
	clock     clickgate.Clock
	log       *zap.Logger

	ch        chan journalrepo.Record
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func newJournalWriter(sessionID string, store journalrepo.Store, clock clickgate.Clock, log *zap.Logger) *journalWriter {
	w := &journalWriter{
		sessionID: sessionID,
		store:     store,
		clock:     clock,
		log:       log,
		ch:        make(chan journalrepo.Record, journalQueue),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *journalWriter) PostMessage(n clickgate.Notification, targetOrigin string) {
	rec := journalrepo.Record{
		ID:           uuid.NewString(),
		SessionID:    w.sessionID,
		Type:         n.Type,
		NodeID:       n.NodeID,
		X:            n.X,
		Y:            n.Y,
		TargetOrigin: targetOrigin,
		CreatedAt:    w.clock.Now().UTC(),
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.ch <- rec:
	default:
		w.log.Warn("journal queue full, dropping notification",
			zap.String("session", w.sessionID),
			zap.String("type", string(n.Type)))
	}
}

func (w *journalWriter) run() {
	defer close(w.done)
	for rec := range w.ch {
		ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
		if err := w.store.Append(ctx, rec); err != nil {
			w.log.Warn("journal append failed", zap.String("session", w.sessionID), zap.Error(err))
		}
		cancel()
	}
}

// Close flushes queued records and stops the writer.
func (w *journalWriter) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.ch)
		w.mu.Unlock()
	})
	<-w.done
}
