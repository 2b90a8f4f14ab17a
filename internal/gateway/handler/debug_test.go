package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	journalrepo "graphclick/internal/gateway/repository/journal"
	"graphclick/internal/gateway/service/session"
)

func newDebugHandler(t *testing.T) (*DebugHandler, *journalrepo.MemoryStore, *session.Registry) {
	t.Helper()
	store := journalrepo.NewMemoryStore(0)
	reg, err := session.NewRegistry(session.Config{}, store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	t.Cleanup(reg.Close)
	return NewDebugHandler(store, reg, zap.NewNop()), store, reg
}

func TestHandleNotifications(t *testing.T) {
	h, store, reg := newDebugHandler(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Append(context.Background(), journalrepo.Record{
			ID: id, SessionID: "s1", Type: clickgate.NodeDoubleClick, NodeID: "n-" + id,
		}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if _, err := reg.Open("s1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleNotifications(rec, httptest.NewRequest(http.MethodGet, "/debug/notifications?session=s1&limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Session       string               `json:"session"`
		Gate          string               `json:"gate"`
		Active        bool                 `json:"active"`
		Notifications []journalrepo.Record `json:"notifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Session != "s1" || body.Gate != "waiting" || body.Active {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.Notifications) != 2 || body.Notifications[1].ID != "c" {
		t.Fatalf("notifications = %+v, want newest two", body.Notifications)
	}
}

func TestHandleNotificationsValidation(t *testing.T) {
	h, _, _ := newDebugHandler(t)
	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{name: "missing session", method: http.MethodGet, target: "/debug/notifications", want: http.StatusBadRequest},
		{name: "bad limit", method: http.MethodGet, target: "/debug/notifications?session=s&limit=x", want: http.StatusBadRequest},
		{name: "negative limit", method: http.MethodGet, target: "/debug/notifications?session=s&limit=-1", want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPost, target: "/debug/notifications?session=s", want: http.StatusMethodNotAllowed},
		{name: "unknown session", method: http.MethodGet, target: "/debug/notifications?session=nobody", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleNotifications(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	h, _, _ := newDebugHandler(t)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
