package clickgate

import (
	"sync"
	"time"
)

// DefaultDoubleClickWindow is how long a single click is held back waiting
// for a double click on the same node.
const DefaultDoubleClickWindow = 250 * time.Millisecond

// Config tunes a Disambiguator. The zero value uses the defaults.
type Config struct {
	// Window is the disambiguation window. Zero means DefaultDoubleClickWindow.
	Window time.Duration
	// Destination is the target origin of every notification. Empty means
	// WildcardOrigin.
	Destination string
	// Clock defaults to RealClock.
	Clock Clock
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultDoubleClickWindow
	}
	if c.Destination == "" {
		c.Destination = WildcardOrigin
	}
	if c.Clock == nil {
		c.Clock = RealClock()
	}
	return c
}

type pendingClick struct {
	nodeID string
	event  PointerEvent
	timer  Timer
	gen    uint64
}

// Disambiguator is the interaction listener set attached to a widget. It
// holds at most one pending single click at a time.
//
// Events may arrive from any goroutine. Transitions are serialised, and a
// deferred single click that fires after being cancelled is discarded, so a
// cancellation is always observed before any later event.
type Disambiguator struct {
	mu      sync.Mutex
	cfg     Config
	nodes   NodeLocator
	out     Messenger
	pending *pendingClick
	gen     uint64
	closed  bool
}

var _ Listener = (*Disambiguator)(nil)

// NewDisambiguator returns a listener that resolves right clicks through
// nodes and posts notifications to out.
func NewDisambiguator(nodes NodeLocator, out Messenger, cfg Config) *Disambiguator {
	return &Disambiguator{
		cfg:   cfg.withDefaults(),
		nodes: nodes,
		out:   out,
	}
}

// OnClick arms a single click for the first node under the pointer,
// replacing any pending one. A click on empty canvas only clears.
func (d *Disambiguator) OnClick(p ClickParams) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.cancelLocked()
	if len(p.Nodes) == 0 || p.Nodes[0] == "" {
		return
	}

	d.gen++
	pc := &pendingClick{
		nodeID: p.Nodes[0],
		event:  p.Event,
		gen:    d.gen,
	}
	pc.timer = d.cfg.Clock.AfterFunc(d.cfg.Window, func() { d.fire(pc.gen) })
	d.pending = pc
}

// OnDoubleClick posts a double click for the first node under the pointer.
// A pending single click is cancelled only when it targets the same node.
func (d *Disambiguator) OnDoubleClick(p ClickParams) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if len(p.Nodes) == 0 || p.Nodes[0] == "" {
		return
	}
	nodeID := p.Nodes[0]
	if d.pending != nil && d.pending.nodeID == nodeID {
		d.cancelLocked()
	}
	d.postLocked(Notification{Type: NodeDoubleClick, NodeID: nodeID})
}

// OnContext suppresses the native context menu and posts a right click for
// the node under the pointer, if any.
func (d *Disambiguator) OnContext(p ContextParams) {
	if p.PreventDefault != nil {
		p.PreventDefault()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.nodes == nil {
		return
	}
	nodeID, ok := d.nodes.NodeAt(p.Pointer)
	if !ok || nodeID == "" {
		return
	}
	if d.pending != nil && d.pending.nodeID == nodeID {
		d.cancelLocked()
	}
	d.postLocked(Notification{
		Type:   NodeRightClick,
		NodeID: nodeID,
		X:      p.Event.ClientX,
		Y:      p.Event.ClientY,
	})
}

// Pending returns the node of the armed single click.
func (d *Disambiguator) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return "", false
	}
	return d.pending.nodeID, true
}

// Close cancels the pending single click. Later events are ignored.
func (d *Disambiguator) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.closed = true
}

func (d *Disambiguator) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pc := d.pending
	if d.closed || pc == nil || pc.gen != gen {
		return
	}
	d.pending = nil
	d.postLocked(Notification{
		Type:   NodeSingleClick,
		NodeID: pc.nodeID,
		X:      pc.event.ClientX,
		Y:      pc.event.ClientY,
	})
}

func (d *Disambiguator) cancelLocked() {
	if d.pending == nil {
		return
	}
	d.pending.timer.Stop()
	d.pending = nil
}

func (d *Disambiguator) postLocked(n Notification) {
	if d.out == nil {
		return
	}
	d.out.PostMessage(n, d.cfg.Destination)
}

// Attach creates a Disambiguator for w and registers it as w's listener.
func Attach(w Widget, out Messenger, cfg Config) *Disambiguator {
	d := NewDisambiguator(w, out, cfg)
	w.Listen(d)
	return d
}
