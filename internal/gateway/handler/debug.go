package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	journalrepo "graphclick/internal/gateway/repository/journal"
	"graphclick/internal/gateway/service/session"
)

type DebugHandler struct {
	journal  journalrepo.Store
	sessions *session.Registry
	log      *zap.Logger
}

func NewDebugHandler(journal journalrepo.Store, sessions *session.Registry, log *zap.Logger) *DebugHandler {
	return &DebugHandler{journal: journal, sessions: sessions, log: log}
}

func (h *DebugHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = v
	}

	recs, err := h.journal.List(r.Context(), sessionID, limit)
	if err != nil {
		if errors.Is(err, journalrepo.ErrInvalidSession) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Warn("list notifications failed", zap.String("session", sessionID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []journalrepo.Record{}
	}

	resp := map[string]any{
		"session":       sessionID,
		"notifications": recs,
	}
	if s, ok := h.sessions.Get(sessionID); ok {
		resp["gate"] = s.GateState().String()
		resp["active"] = s.Active()
		resp["parents"] = s.Hub().Len()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *DebugHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":       true,
		"sessions": h.sessions.Len(),
	})
}
