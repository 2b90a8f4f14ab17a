package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphclick/internal/clickgate"
	journalrepo "graphclick/internal/gateway/repository/journal"
	"graphclick/internal/gateway/service/session"
)

type fixture struct {
	srv      *httptest.Server
	sessions *session.Registry
	journal  *journalrepo.MemoryStore
}

func newFixture(t *testing.T, destination string) *fixture {
	t.Helper()
	return newFixtureWithCapacity(t, destination, 0)
}

func newFixtureWithCapacity(t *testing.T, destination string, capacity int) *fixture {
	t.Helper()
	store := journalrepo.NewMemoryStore(0)
	reg, err := session.NewRegistry(session.Config{
		Click:    clickgate.Config{Window: 40 * time.Millisecond, Destination: destination},
		Gate:     clickgate.GateConfig{Interval: 5 * time.Millisecond, MaxAttempts: 200},
		Capacity: capacity,
	}, store, zap.NewNop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/widget", NewWidgetHandler(reg, zap.NewNop()).HandleWidgetWS)
	mux.HandleFunc("/ws/parent", NewParentHandler(reg, zap.NewNop()).HandleParentWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		reg.Close()
	})
	return &fixture{srv: srv, sessions: reg, journal: store}
}

func (f *fixture) dial(t *testing.T, path, origin string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + path
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func expectSilence(t *testing.T, conn *websocket.Conn, d time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(d)))
	var msg map[string]any
	err := conn.ReadJSON(&msg)
	require.Error(t, err, "unexpected message %v", msg)
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// connect opens parent and widget connections and waits until the widget's
// listeners are attached.
func connect(t *testing.T, f *fixture, id, origin string) (parent, widget *websocket.Conn) {
	t.Helper()
	parent = f.dial(t, "/ws/parent?session="+id, origin)
	assert.Equal(t, "subscribed", readMsg(t, parent)["type"])

	widget = f.dial(t, "/ws/widget?session="+id, "")
	assert.Equal(t, "subscribed", readMsg(t, widget)["type"])
	send(t, widget, map[string]any{"type": "layout", "boxes": []map[string]any{
		{"id": "p1", "x": 50, "y": 50, "width": 20, "height": 20},
	}})
	send(t, widget, map[string]any{"type": "ready"})

	require.Eventually(t, func() bool {
		s, ok := f.sessions.Get(id)
		return ok && s.Active()
	}, 2*time.Second, 5*time.Millisecond)
	return parent, widget
}

func TestSingleClickReachesParent(t *testing.T) {
	f := newFixture(t, clickgate.WildcardOrigin)
	parent, widget := connect(t, f, "s1", "https://tree.example")

	send(t, widget, map[string]any{"type": "click", "nodes": []string{"p1"}, "clientX": 12, "clientY": 34})

	msg := readMsg(t, parent)
	assert.Equal(t, map[string]any{"type": "nodeSingleClick", "nodeId": "p1", "clientX": 12.0, "clientY": 34.0}, msg)
}

func TestDoubleClickSuppressesSingleClick(t *testing.T) {
	f := newFixture(t, clickgate.WildcardOrigin)
	parent, widget := connect(t, f, "s2", "")

	send(t, widget, map[string]any{"type": "click", "nodes": []string{"p1"}})
	send(t, widget, map[string]any{"type": "doubleClick", "nodes": []string{"p1"}})

	assert.Equal(t, map[string]any{"type": "nodeDoubleClick", "nodeId": "p1"}, readMsg(t, parent))
	expectSilence(t, parent, 150*time.Millisecond)
}

func TestRightClickResolvesFromLayout(t *testing.T) {
	f := newFixture(t, clickgate.WildcardOrigin)
	parent, widget := connect(t, f, "s3", "")

	send(t, widget, map[string]any{"type": "oncontext", "clientX": 200, "clientY": 300, "pointer": map[string]any{"x": 300, "y": 300}})
	send(t, widget, map[string]any{"type": "oncontext", "clientX": 200, "clientY": 300, "pointer": map[string]any{"x": 55, "y": 45}})

	assert.Equal(t, map[string]any{"type": "nodeRightClick", "nodeId": "p1", "x": 200.0, "y": 300.0}, readMsg(t, parent))

	send(t, widget, map[string]any{"type": "oncontext"})
	assert.Equal(t, "error", readMsg(t, widget)["type"])
}

func TestTargetOriginFiltersParents(t *testing.T) {
	f := newFixture(t, "https://tree.example")
	allowed, widget := connect(t, f, "s4", "https://tree.example")
	other := f.dial(t, "/ws/parent?session=s4", "https://evil.example")
	assert.Equal(t, "subscribed", readMsg(t, other)["type"])

	send(t, widget, map[string]any{"type": "doubleClick", "nodes": []string{"p1"}})

	assert.Equal(t, "nodeDoubleClick", readMsg(t, allowed)["type"])
	expectSilence(t, other, 100*time.Millisecond)
}

func TestWidgetDisconnectClosesSession(t *testing.T) {
	f := newFixture(t, clickgate.WildcardOrigin)
	parent, widget := connect(t, f, "s5", "")

	send(t, widget, map[string]any{"type": "doubleClick", "nodes": []string{"p1"}})
	assert.Equal(t, "nodeDoubleClick", readMsg(t, parent)["type"])
	require.NoError(t, widget.Close())

	assert.Equal(t, map[string]any{"type": "closed", "sessionId": "s5"}, readMsg(t, parent))
	require.Eventually(t, func() bool {
		_, ok := f.sessions.Get("s5")
		return !ok
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		recs, err := f.journal.List(context.Background(), "s5", 10)
		return err == nil && len(recs) == 1 && recs[0].Type == clickgate.NodeDoubleClick
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEvictedSessionReleasesWidget(t *testing.T) {
	f := newFixtureWithCapacity(t, clickgate.WildcardOrigin, 1)
	parent, widget := connect(t, f, "a", "")

	_, err := f.sessions.Open("b")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"type": "closed", "sessionId": "a"}, readMsg(t, parent))
	assert.Equal(t, map[string]any{"type": "closed", "sessionId": "a"}, readMsg(t, widget))
	require.NoError(t, widget.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = widget.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "widget connection was left open")
	}

	// The page reconnects and the fresh session becomes active.
	parent, widget = connect(t, f, "a", "")
	send(t, widget, map[string]any{"type": "doubleClick", "nodes": []string{"p1"}})
	assert.Equal(t, map[string]any{"type": "nodeDoubleClick", "nodeId": "p1"}, readMsg(t, parent))
}

func TestWidgetProtocolErrors(t *testing.T) {
	f := newFixture(t, clickgate.WildcardOrigin)
	widget := f.dial(t, "/ws/widget", "")

	hello := readMsg(t, widget)
	assert.Equal(t, "subscribed", hello["type"])
	assert.NotEmpty(t, hello["sessionId"], "a session id is generated when none is given")

	send(t, widget, map[string]any{"type": "ping"})
	assert.Equal(t, "pong", readMsg(t, widget)["type"])

	send(t, widget, map[string]any{"type": "hover"})
	msg := readMsg(t, widget)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "invalid_argument", msg["code"])

	send(t, widget, map[string]any{})
	assert.Equal(t, "error", readMsg(t, widget)["type"])
}

func TestParentRequiresSession(t *testing.T) {
	f := newFixture(t, clickgate.WildcardOrigin)
	resp, err := http.Get(f.srv.URL + "/ws/parent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotificationEncodesOnTheWire(t *testing.T) {
	raw, err := json.Marshal(any(clickgate.Notification{Type: clickgate.NodeRightClick, NodeID: "n", X: 1, Y: 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"nodeRightClick","nodeId":"n","x":1,"y":2}`, string(raw))
}
