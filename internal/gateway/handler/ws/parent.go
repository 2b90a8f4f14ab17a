package ws

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"graphclick/internal/gateway/service/session"
)

// ParentHandler streams a session's notifications to the page embedding the
// widget. The page's Origin header decides which targeted notifications it
// may receive.
type ParentHandler struct {
	sessions *session.Registry
	log      *zap.Logger
}

func NewParentHandler(sessions *session.Registry, log *zap.Logger) *ParentHandler {
	return &ParentHandler{sessions: sessions, log: log}
}

type parentInbound struct {
	Type string `json:"type"`
}

func (h *ParentHandler) HandleParentWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}
	s, err := h.sessions.Open(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	sub, err := s.Hub().Subscribe(origin, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	p, err := startPump(ctx, conn)
	if err != nil {
		h.log.Warn("parent ws setup failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	defer p.wait()

	h.log.Info("parent connected", zap.String("session", sessionID), zap.String("origin", origin))
	p.push(controlMessage{Type: "subscribed", SessionID: sessionID})

	go func() {
		defer cancel()
		for {
			var in parentInbound
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			switch strings.ToLower(strings.TrimSpace(in.Type)) {
			case "ping":
				p.push(controlMessage{Type: "pong"})
			default:
				p.push(errorMessage("invalid_argument", "unsupported type: "+in.Type))
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.C():
			if !ok {
				p.push(controlMessage{Type: "closed", SessionID: sessionID})
				cancel()
				return
			}
			p.push(n)
		}
	}
}
