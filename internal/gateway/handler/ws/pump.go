package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsQueue     = 32
)

// Origin checks are the messenger's job: a notification addressed to a
// specific origin is only delivered to parents with that origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// pump owns the write side of a connection. Messages are queued and written
// by one goroutine that also keeps the connection alive with pings.
type pump struct {
	conn *websocket.Conn
	out  chan any
	done chan struct{}
}

func startPump(ctx context.Context, conn *websocket.Conn) (*pump, error) {
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return nil, err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	p := &pump{
		conn: conn,
		out:  make(chan any, wsQueue),
		done: make(chan struct{}),
	}
	go p.run(ctx)
	return p, nil
}

func (p *pump) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.flush()
			return
		case msg := <-p.out:
			if err := p.write(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := p.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (p *pump) write(msg any) error {
	if err := p.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return p.conn.WriteJSON(msg)
}

// flush writes whatever is still queued, then says goodbye.
func (p *pump) flush() {
	for {
		select {
		case msg := <-p.out:
			if err := p.write(msg); err != nil {
				return
			}
		default:
			_ = p.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}

// push queues msg, dropping the oldest queued message when the queue is full.
func (p *pump) push(msg any) {
	select {
	case p.out <- msg:
		return
	default:
	}
	select {
	case <-p.out:
	default:
	}
	select {
	case p.out <- msg:
	default:
	}
}

// wait blocks until the writer goroutine exits.
func (p *pump) wait() {
	<-p.done
}

type controlMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func errorMessage(code, msg string) controlMessage {
	return controlMessage{Type: "error", Code: code, Message: msg}
}
