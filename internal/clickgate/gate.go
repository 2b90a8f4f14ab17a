package clickgate

import (
	"sync"
	"time"
)

const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultMaxPollAttempts = 20
)

// GateState is the state of a readiness Gate.
type GateState int

const (
	GateWaiting GateState = iota
	GateReady
	GateExhausted
	GateStopped
)

func (s GateState) String() string {
	switch s {
	case GateWaiting:
		return "waiting"
	case GateReady:
		return "ready"
	case GateExhausted:
		return "exhausted"
	case GateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Probe reports the widget handle once it exists.
type Probe func() (Widget, bool)

// GateConfig sets the poll interval and attempt budget of a Gate. Zero
// fields fall back to DefaultPollInterval and DefaultMaxPollAttempts.
type GateConfig struct {
	Interval    time.Duration
	MaxAttempts int
	Clock       Clock
}

func (c GateConfig) withDefaults() GateConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxPollAttempts
	}
	if c.Clock == nil {
		c.Clock = RealClock()
	}
	return c
}

// Gate polls for a widget handle on a fixed cadence and hands it to the
// ready callback once. After MaxAttempts failed probes it gives up without
// error and never calls back.
type Gate struct {
	mu       sync.Mutex
	cfg      GateConfig
	probe    Probe
	state    GateState
	attempts int
	started  bool
	timer    Timer
	onReady  func(Widget)
}

func NewGate(probe Probe, cfg GateConfig) *Gate {
	return &Gate{
		cfg:   cfg.withDefaults(),
		probe: probe,
	}
}

// Start schedules the first probe one interval from now. Calling Start more
// than once has no effect.
func (g *Gate) Start(onReady func(Widget)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started || g.state != GateWaiting {
		return
	}
	g.started = true
	g.onReady = onReady
	g.timer = g.cfg.Clock.AfterFunc(g.cfg.Interval, g.tick)
}

// Stop cancels polling if the gate is still waiting.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GateWaiting {
		return
	}
	g.state = GateStopped
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Attempts returns the number of probes run so far.
func (g *Gate) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}

func (g *Gate) tick() {
	g.mu.Lock()
	if g.state != GateWaiting {
		g.mu.Unlock()
		return
	}
	g.attempts++
	g.timer = nil

	var (
		w  Widget
		ok bool
	)
	if g.probe != nil {
		w, ok = g.probe()
	}
	if ok && w != nil {
		g.state = GateReady
		onReady := g.onReady
		g.mu.Unlock()
		if onReady != nil {
			onReady(w)
		}
		return
	}
	if g.attempts >= g.cfg.MaxAttempts {
		g.state = GateExhausted
		g.mu.Unlock()
		return
	}
	g.timer = g.cfg.Clock.AfterFunc(g.cfg.Interval, g.tick)
	g.mu.Unlock()
}
