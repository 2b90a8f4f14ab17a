package replay

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"graphclick/internal/clickgate"
)

// Event is one widget event at an offset from the start of the script.
type Event struct {
	At      time.Duration    `yaml:"at"`
	Type    string           `yaml:"type"`
	Nodes   []string         `yaml:"nodes,omitempty"`
	ClientX float64          `yaml:"clientX,omitempty"`
	ClientY float64          `yaml:"clientY,omitempty"`
	Pointer *clickgate.Point `yaml:"pointer,omitempty"`
}

// Script describes a widget session to replay.
//
// Without widgetReadyAt the listeners are attached at time zero. With it,
// the readiness gate polls from time zero and the widget handle appears at
// the given offset; events before attachment are dropped.
type Script struct {
	Window        time.Duration       `yaml:"window,omitempty"`
	Destination   string              `yaml:"destination,omitempty"`
	PollInterval  time.Duration       `yaml:"pollInterval,omitempty"`
	PollAttempts  int                 `yaml:"pollAttempts,omitempty"`
	WidgetReadyAt *time.Duration      `yaml:"widgetReadyAt,omitempty"`
	Layout        []clickgate.NodeBox `yaml:"layout,omitempty"`
	Events        []Event             `yaml:"events"`
}

const (
	eventClick       = "click"
	eventDoubleClick = "doubleclick"
	eventContext     = "oncontext"
)

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a script. Events are ordered by offset,
// keeping file order for equal offsets.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i := range s.Events {
		ev := &s.Events[i]
		ev.Type = strings.ToLower(strings.TrimSpace(ev.Type))
		switch ev.Type {
		case eventClick, eventDoubleClick:
		case eventContext:
			if ev.Pointer == nil {
				return nil, fmt.Errorf("event %d: oncontext requires pointer", i)
			}
		default:
			return nil, fmt.Errorf("event %d: unsupported type %q", i, ev.Type)
		}
		if ev.At < 0 {
			return nil, fmt.Errorf("event %d: negative offset %s", i, ev.At)
		}
	}
	if s.WidgetReadyAt != nil && *s.WidgetReadyAt < 0 {
		return nil, fmt.Errorf("widgetReadyAt must not be negative")
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return &s, nil
}
