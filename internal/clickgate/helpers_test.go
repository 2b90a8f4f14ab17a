package clickgate_test

import (
	"sync"
	"time"

	"graphclick/internal/clickgate"
	"graphclick/internal/clickgate/clocktest"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type posted struct {
	n      clickgate.Notification
	target string
}

type recorder struct {
	mu   sync.Mutex
	msgs []posted
}

func (r *recorder) PostMessage(n clickgate.Notification, targetOrigin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, posted{n: n, target: targetOrigin})
}

func (r *recorder) all() []clickgate.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]clickgate.Notification, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.n)
	}
	return out
}

func (r *recorder) count(typ clickgate.NotificationType) int {
	n := 0
	for _, m := range r.all() {
		if m.Type == typ {
			n++
		}
	}
	return n
}

type fakeWidget struct {
	clickgate.Layout
	mu       sync.Mutex
	listener clickgate.Listener
}

func (w *fakeWidget) Listen(l clickgate.Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener = l
}

func (w *fakeWidget) attached() clickgate.Listener {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listener
}

func newWidget(boxes ...clickgate.NodeBox) *fakeWidget {
	w := &fakeWidget{}
	w.Set(boxes)
	return w
}

func newSubject(w *fakeWidget) (*clickgate.Disambiguator, *recorder, *clocktest.Clock) {
	clk := clocktest.New(epoch)
	rec := &recorder{}
	d := clickgate.NewDisambiguator(w, rec, clickgate.Config{Clock: clk})
	return d, rec, clk
}

func click(nodes ...string) clickgate.ClickParams {
	return clickgate.ClickParams{Nodes: nodes, Event: clickgate.PointerEvent{ClientX: 10, ClientY: 20}}
}

func newSubjectClock() *clocktest.Clock {
	return clocktest.New(epoch)
}
