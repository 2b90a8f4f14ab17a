package session

import (
	"sync"

	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	"graphclick/internal/gateway/hub"
	journalrepo "graphclick/internal/gateway/repository/journal"
)

// Session joins one embedded widget with the parent contexts listening to it.
type Session struct {
	id     string
	log    *zap.Logger
	widget *RemoteWidget
	gate   *clickgate.Gate
	hub    *hub.Hub
	writer *journalWriter
	done   chan struct{}

	mu     sync.Mutex
	disamb *clickgate.Disambiguator
	closed bool
}

func newSession(id string, cfg Config, store journalrepo.Store, log *zap.Logger) *Session {
	s := &Session{
		id:     id,
		log:    log.With(zap.String("session", id)),
		widget: &RemoteWidget{},
		hub:    hub.New(),
		done:   make(chan struct{}),
	}
	if store != nil {
		s.writer = newJournalWriter(id, store, cfg.clock(), s.log)
	}

	s.gate = clickgate.NewGate(s.probe, cfg.Gate)
	s.gate.Start(func(w clickgate.Widget) { s.attach(w, cfg.Click) })
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Widget() *RemoteWidget {
	return s.widget
}

func (s *Session) Hub() *hub.Hub {
	return s.hub
}

// Done is closed when the session is closed, including by eviction.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) GateState() clickgate.GateState {
	return s.gate.State()
}

// Active reports whether interaction listeners are attached.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disamb != nil && !s.closed
}

func (s *Session) probe() (clickgate.Widget, bool) {
	if !s.widget.Ready() {
		return nil, false
	}
	return s.widget, true
}

func (s *Session) attach(w clickgate.Widget, cfg clickgate.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.disamb = clickgate.Attach(w, clickgate.MessengerFunc(s.post), cfg)
	s.log.Info("widget listeners attached")
}

func (s *Session) post(n clickgate.Notification, targetOrigin string) {
	s.hub.PostMessage(n, targetOrigin)
	if s.writer != nil {
		s.writer.PostMessage(n, targetOrigin)
	}
	s.log.Debug("notification posted",
		zap.String("type", string(n.Type)),
		zap.String("node", n.NodeID),
		zap.String("target_origin", targetOrigin))
}

// Close stops polling, drops the pending click, ends parent subscriptions
// and flushes the journal.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	d := s.disamb
	close(s.done)
	s.mu.Unlock()

	s.gate.Stop()
	if d != nil {
		d.Close()
	}
	s.hub.Close()
	if s.writer != nil {
		s.writer.Close()
	}
	if s.gate.State() == clickgate.GateExhausted {
		s.log.Info("session closed without a widget")
	} else {
		s.log.Debug("session closed")
	}
}
