package session

import (
	"sync"

	"graphclick/internal/clickgate"
)

// RemoteWidget stands in for a widget running in a browser. Its events
// arrive over the widget connection; NodeAt answers from the last layout the
// widget reported.
type RemoteWidget struct {
	clickgate.Layout

	mu       sync.Mutex
	ready    bool
	listener clickgate.Listener
}

var _ clickgate.Widget = (*RemoteWidget)(nil)

func (w *RemoteWidget) Listen(l clickgate.Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener = l
}

// MarkReady records that the widget's runtime handle exists.
func (w *RemoteWidget) MarkReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ready = true
}

func (w *RemoteWidget) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// Attached reports whether a listener is registered.
func (w *RemoteWidget) Attached() bool {
	return w.current() != nil
}

// Click forwards a click event. It reports false when nothing is listening.
func (w *RemoteWidget) Click(p clickgate.ClickParams) bool {
	l := w.current()
	if l == nil {
		return false
	}
	l.OnClick(p)
	return true
}

func (w *RemoteWidget) DoubleClick(p clickgate.ClickParams) bool {
	l := w.current()
	if l == nil {
		return false
	}
	l.OnDoubleClick(p)
	return true
}

func (w *RemoteWidget) Context(p clickgate.ContextParams) bool {
	l := w.current()
	if l == nil {
		return false
	}
	l.OnContext(p)
	return true
}

func (w *RemoteWidget) current() clickgate.Listener {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listener
}
