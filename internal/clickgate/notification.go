package clickgate

import (
	"encoding/json"
	"fmt"
)

// NotificationType names an interaction outcome delivered to the parent.
type NotificationType string

const (
	NodeSingleClick NotificationType = "nodeSingleClick"
	NodeDoubleClick NotificationType = "nodeDoubleClick"
	NodeRightClick  NotificationType = "nodeRightClick"
)

// WildcardOrigin addresses a notification to any parent origin.
const WildcardOrigin = "*"

// Notification is a classified interaction. X and Y carry the pointer's
// client coordinates for single and right clicks; double clicks have none.
type Notification struct {
	Type   NotificationType
	NodeID string
	X      float64
	Y      float64
}

type singleClickWire struct {
	Type    NotificationType `json:"type"`
	NodeID  string           `json:"nodeId"`
	ClientX float64          `json:"clientX"`
	ClientY float64          `json:"clientY"`
}

type doubleClickWire struct {
	Type   NotificationType `json:"type"`
	NodeID string           `json:"nodeId"`
}

type rightClickWire struct {
	Type   NotificationType `json:"type"`
	NodeID string           `json:"nodeId"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
}

// MarshalJSON writes the message shape the parent page expects for each
// notification type.
func (n Notification) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeSingleClick:
		return json.Marshal(singleClickWire{Type: n.Type, NodeID: n.NodeID, ClientX: n.X, ClientY: n.Y})
	case NodeDoubleClick:
		return json.Marshal(doubleClickWire{Type: n.Type, NodeID: n.NodeID})
	case NodeRightClick:
		return json.Marshal(rightClickWire{Type: n.Type, NodeID: n.NodeID, X: n.X, Y: n.Y})
	default:
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
}

// UnmarshalJSON reads any of the three message shapes.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    NotificationType `json:"type"`
		NodeID  string           `json:"nodeId"`
		ClientX float64          `json:"clientX"`
		ClientY float64          `json:"clientY"`
		X       float64          `json:"x"`
		Y       float64          `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Notification{Type: raw.Type, NodeID: raw.NodeID}
	switch raw.Type {
	case NodeSingleClick:
		out.X, out.Y = raw.ClientX, raw.ClientY
	case NodeDoubleClick:
	case NodeRightClick:
		out.X, out.Y = raw.X, raw.Y
	default:
		return fmt.Errorf("unknown notification type %q", raw.Type)
	}
	*n = out
	return nil
}

// Messenger delivers notifications to the parent context. targetOrigin is
// either WildcardOrigin or the origin the parent must have to receive it.
type Messenger interface {
	PostMessage(n Notification, targetOrigin string)
}

// MessengerFunc adapts a function to Messenger.
type MessengerFunc func(n Notification, targetOrigin string)

func (f MessengerFunc) PostMessage(n Notification, targetOrigin string) {
	f(n, targetOrigin)
}

// OriginMatches reports whether a message addressed to targetOrigin may be
// delivered to a parent whose origin is origin.
func OriginMatches(targetOrigin, origin string) bool {
	if targetOrigin == "" || targetOrigin == WildcardOrigin {
		return true
	}
	return targetOrigin == origin
}
