package replay

import (
	"sync"
	"time"

	"graphclick/internal/clickgate"
	"graphclick/internal/clickgate/clocktest"
)

var epoch = time.Unix(0, 0).UTC()

// Output is a notification and the offset at which it was posted.
type Output struct {
	At           time.Duration          `json:"at"`
	Notification clickgate.Notification `json:"notification"`
	TargetOrigin string                 `json:"targetOrigin"`
}

type Result struct {
	Outputs []Output `json:"outputs"`
	// Gate is empty when the script attaches listeners directly.
	Gate            string `json:"gate,omitempty"`
	Dropped         int    `json:"dropped"`
	SuppressedMenus int    `json:"suppressedMenus"`
}

type scriptWidget struct {
	clickgate.Layout
	mu       sync.Mutex
	listener clickgate.Listener
}

func (w *scriptWidget) Listen(l clickgate.Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener = l
}

func (w *scriptWidget) current() clickgate.Listener {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listener
}

// Run plays the script on a manual clock and returns every notification the
// classifier posted, including single clicks that fire after the last event.
func Run(s *Script) Result {
	clk := clocktest.New(epoch)
	var res Result

	out := clickgate.MessengerFunc(func(n clickgate.Notification, target string) {
		res.Outputs = append(res.Outputs, Output{
			At:           clk.Now().Sub(epoch),
			Notification: n,
			TargetOrigin: target,
		})
	})
	cfg := clickgate.Config{Window: s.Window, Destination: s.Destination, Clock: clk}

	w := &scriptWidget{}
	w.Set(s.Layout)

	var (
		disamb *clickgate.Disambiguator
		gate   *clickgate.Gate
	)
	if s.WidgetReadyAt == nil {
		disamb = clickgate.Attach(w, out, cfg)
	} else {
		readyAt := *s.WidgetReadyAt
		gate = clickgate.NewGate(func() (clickgate.Widget, bool) {
			return w, clk.Now().Sub(epoch) >= readyAt
		}, clickgate.GateConfig{Interval: s.PollInterval, MaxAttempts: s.PollAttempts, Clock: clk})
		gate.Start(func(ready clickgate.Widget) {
			disamb = clickgate.Attach(ready, out, cfg)
		})
	}

	for _, ev := range s.Events {
		if wait := ev.At - clk.Now().Sub(epoch); wait > 0 {
			clk.Advance(wait)
		}
		l := w.current()
		if l == nil || !dispatch(l, ev, &res) {
			res.Dropped++
		}
	}

	// Let the last pending single click and any remaining polls play out.
	clk.Advance(drainWindow(s))

	if gate != nil {
		res.Gate = gate.State().String()
		gate.Stop()
	}
	if disamb != nil {
		disamb.Close()
	}
	return res
}

// dispatch reports whether ev could be delivered. A context event without a
// pointer cannot be resolved to a node.
func dispatch(l clickgate.Listener, ev Event, res *Result) bool {
	event := clickgate.PointerEvent{ClientX: ev.ClientX, ClientY: ev.ClientY}
	switch ev.Type {
	case eventClick:
		l.OnClick(clickgate.ClickParams{Nodes: ev.Nodes, Event: event})
	case eventDoubleClick:
		l.OnDoubleClick(clickgate.ClickParams{Nodes: ev.Nodes, Event: event})
	case eventContext:
		if ev.Pointer == nil {
			return false
		}
		l.OnContext(clickgate.ContextParams{
			Event:          event,
			Pointer:        *ev.Pointer,
			PreventDefault: func() { res.SuppressedMenus++ },
		})
	default:
		return false
	}
	return true
}

func drainWindow(s *Script) time.Duration {
	window := s.Window
	if window <= 0 {
		window = clickgate.DefaultDoubleClickWindow
	}
	if s.WidgetReadyAt == nil {
		return window
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = clickgate.DefaultPollInterval
	}
	attempts := s.PollAttempts
	if attempts <= 0 {
		attempts = clickgate.DefaultMaxPollAttempts
	}
	return window + time.Duration(attempts)*interval
}
