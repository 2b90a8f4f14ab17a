package clickgate

import "sync"

// NodeBox is the DOM-space bounding box of a drawn node, centred on X/Y.
type NodeBox struct {
	ID     string  `json:"id" yaml:"id"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Contains reports whether p falls inside the box, edges included.
func (b NodeBox) Contains(p Point) bool {
	if b.Width < 0 || b.Height < 0 {
		return false
	}
	dx := p.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx <= b.Width/2 && dy <= b.Height/2
}

// Layout is a NodeLocator over the most recent set of node boxes reported by
// a widget. Later boxes are drawn on top of earlier ones.
type Layout struct {
	mu    sync.RWMutex
	boxes []NodeBox
}

// Set replaces the layout.
func (l *Layout) Set(boxes []NodeBox) {
	cp := make([]NodeBox, 0, len(boxes))
	for _, b := range boxes {
		if b.ID == "" {
			continue
		}
		cp = append(cp, b)
	}
	l.mu.Lock()
	l.boxes = cp
	l.mu.Unlock()
}

// Len returns the number of nodes in the layout.
func (l *Layout) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.boxes)
}

// NodeAt returns the topmost node containing p.
func (l *Layout) NodeAt(p Point) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.boxes) - 1; i >= 0; i-- {
		if l.boxes[i].Contains(p) {
			return l.boxes[i].ID, true
		}
	}
	return "", false
}
