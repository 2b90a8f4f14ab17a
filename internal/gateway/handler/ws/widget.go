package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	"graphclick/internal/gateway/service/session"
)

// WidgetHandler accepts the connection of an embedded graph widget and
// feeds its events to the session's classifier.
type WidgetHandler struct {
	sessions *session.Registry
	log      *zap.Logger
}

func NewWidgetHandler(sessions *session.Registry, log *zap.Logger) *WidgetHandler {
	return &WidgetHandler{sessions: sessions, log: log}
}

type widgetPointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type widgetInbound struct {
	Type    string              `json:"type"`
	Nodes   []string            `json:"nodes,omitempty"`
	ClientX float64             `json:"clientX,omitempty"`
	ClientY float64             `json:"clientY,omitempty"`
	Pointer *widgetPointer      `json:"pointer,omitempty"`
	Boxes   []clickgate.NodeBox `json:"boxes,omitempty"`
}

func (h *WidgetHandler) HandleWidgetWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s, err := h.sessions.Open(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	p, err := startPump(ctx, conn)
	if err != nil {
		h.log.Warn("widget ws setup failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	defer func() {
		cancel()
		p.wait()
		h.sessions.Remove(s)
	}()

	h.log.Info("widget connected", zap.String("session", sessionID))
	p.push(controlMessage{Type: "subscribed", SessionID: sessionID})

	// An evicted session releases its widget so the page can reconnect.
	go func() {
		select {
		case <-ctx.Done():
		case <-s.Done():
			h.log.Info("widget released by closed session", zap.String("session", sessionID))
			p.push(controlMessage{Type: "closed", SessionID: sessionID})
			cancel()
			p.wait()
			_ = conn.Close()
		}
	}()

	widget := s.Widget()
	for {
		var in widgetInbound
		if err := conn.ReadJSON(&in); err != nil {
			h.log.Debug("widget disconnected", zap.String("session", sessionID), zap.Error(err))
			return
		}
		event := clickgate.PointerEvent{ClientX: in.ClientX, ClientY: in.ClientY}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "":
			p.push(errorMessage("invalid_argument", "type is required"))
		case "ping":
			p.push(controlMessage{Type: "pong"})
		case "ready":
			widget.MarkReady()
		case "layout":
			widget.Set(in.Boxes)
		case "click":
			widget.Click(clickgate.ClickParams{Nodes: in.Nodes, Event: event})
		case "doubleclick":
			widget.DoubleClick(clickgate.ClickParams{Nodes: in.Nodes, Event: event})
		case "oncontext":
			if in.Pointer == nil {
				p.push(errorMessage("invalid_argument", "pointer is required"))
				continue
			}
			widget.Context(clickgate.ContextParams{
				Event:   event,
				Pointer: clickgate.Point{X: in.Pointer.X, Y: in.Pointer.Y},
			})
		default:
			p.push(errorMessage("invalid_argument", "unsupported type: "+in.Type))
		}
	}
}
