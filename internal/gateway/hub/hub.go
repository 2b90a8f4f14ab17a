package hub

import (
	"errors"
	"strings"
	"sync"

	"graphclick/internal/clickgate"
)

var ErrClosed = errors.New("hub is closed")

const defaultBuffer = 32

// Hub fans notifications out to the parent contexts subscribed to one
// session. Delivery never blocks: a full subscriber queue drops its oldest
// notification.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscriber
	nextID uint64
	closed bool
}

var _ clickgate.Messenger = (*Hub)(nil)

func New() *Hub {
	return &Hub{subs: make(map[uint64]*Subscriber)}
}

// Subscriber is one parent context.
type Subscriber struct {
	hub    *Hub
	id     uint64
	origin string
	ch     chan clickgate.Notification
	once   sync.Once
}

// Subscribe registers a parent with the given origin. buffer <= 0 uses a
// default queue length.
func (h *Hub) Subscribe(origin string, buffer int) (*Subscriber, error) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	h.nextID++
	sub := &Subscriber{
		hub:    h,
		id:     h.nextID,
		origin: strings.TrimSpace(origin),
		ch:     make(chan clickgate.Notification, buffer),
	}
	h.subs[sub.id] = sub
	return sub, nil
}

// PostMessage delivers n to every subscriber whose origin matches
// targetOrigin. Non-matching subscribers are skipped silently.
func (h *Hub) PostMessage(n clickgate.Notification, targetOrigin string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, sub := range h.subs {
		if !clickgate.OriginMatches(targetOrigin, sub.origin) {
			continue
		}
		push(sub.ch, n)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscriptions fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.closeChan()
	}
}

func (s *Subscriber) Origin() string {
	return s.origin
}

// C is closed when the subscriber or its hub closes.
func (s *Subscriber) C() <-chan clickgate.Notification {
	return s.ch
}

func (s *Subscriber) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subs[s.id]; !ok {
		return
	}
	delete(s.hub.subs, s.id)
	s.closeChan()
}

func (s *Subscriber) closeChan() {
	s.once.Do(func() { close(s.ch) })
}

func push(ch chan clickgate.Notification, n clickgate.Notification) {
	select {
	case ch <- n:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- n:
	default:
	}
}
