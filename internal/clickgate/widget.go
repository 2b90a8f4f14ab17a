package clickgate

// PointerEvent is the raw pointer event attached to a widget notification.
type PointerEvent struct {
	ClientX float64
	ClientY float64
}

// Point is a position in DOM space, relative to the widget canvas.
type Point struct {
	X float64
	Y float64
}

// ClickParams is the payload of the widget's click and doubleClick events.
// Nodes lists the nodes under the pointer; it may be empty.
type ClickParams struct {
	Nodes []string
	Event PointerEvent
}

// ContextParams is the payload of the widget's context-menu event. It does
// not carry a node list; the node is looked up at Pointer.
type ContextParams struct {
	Event   PointerEvent
	Pointer Point

	// PreventDefault suppresses the platform context menu. May be nil.
	PreventDefault func()
}

// Listener receives widget interaction events.
type Listener interface {
	OnClick(ClickParams)
	OnDoubleClick(ClickParams)
	OnContext(ContextParams)
}

// NodeLocator resolves the node drawn at a DOM position.
type NodeLocator interface {
	NodeAt(p Point) (string, bool)
}

// Widget is the runtime handle of a graph visualization widget.
type Widget interface {
	NodeLocator
	Listen(l Listener)
}
