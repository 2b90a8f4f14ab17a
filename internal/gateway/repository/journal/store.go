package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"graphclick/internal/clickgate"
)

// Record is one notification posted to a session's parent context.
type Record struct {
	ID           string                     `json:"id"`
	SessionID    string                     `json:"session_id"`
	Type         clickgate.NotificationType `json:"type"`
	NodeID       string                     `json:"node_id"`
	X            float64                    `json:"x"`
	Y            float64                    `json:"y"`
	TargetOrigin string                     `json:"target_origin"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// Notification returns the notification the record was made from.
func (r Record) Notification() clickgate.Notification {
	return clickgate.Notification{Type: r.Type, NodeID: r.NodeID, X: r.X, Y: r.Y}
}

// Store defines operations for persisting posted notifications.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// List returns the newest limit records of a session, oldest first.
	List(ctx context.Context, sessionID string, limit int) ([]Record, error)
}

const DefaultListLimit = 100

var ErrInvalidSession = errors.New("session_id is required")

func normalizeSessionID(id string) string {
	return strings.TrimSpace(id)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
