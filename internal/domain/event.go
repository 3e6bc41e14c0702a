package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventType classifies a single attribute transition.
type EventType string

const (
	EventTypeCreated  EventType = "CREATED"
	EventTypeUpdated  EventType = "UPDATED"
	EventTypeDeleted  EventType = "DELETED"
	EventTypeArchived EventType = "ARCHIVED"
)

// ErrUnknownEventType signals a transport/schema mismatch, not a data problem.
var ErrUnknownEventType = errors.New("unknown event type")

// ParseEventType normalizes and validates an event type tag.
func ParseEventType(s string) (EventType, error) {
	switch et := EventType(strings.ToUpper(s)); et {
	case EventTypeCreated, EventTypeUpdated, EventTypeDeleted, EventTypeArchived:
		return et, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
}

// Event is one immutable record of a single attribute's value during one
// validity interval. Once written, only ValidTo and IsActive may change,
// exactly once, when a newer version supersedes it.
type Event struct {
	EventType  EventType `json:"event_type"`
	OldValue   any       `json:"old_value"`
	NewValue   any       `json:"new_value"`
	UserID     *string   `json:"user_id"`
	SessionID  *string   `json:"session_id"`
	InstanceID int64     `json:"instance_id"`
	Attribute  string    `json:"attribute"`
	Version    int       `json:"version"`
	ValidFrom  string    `json:"valid_from"`
	ValidTo    *string   `json:"valid_to"`
	IsActive   bool      `json:"is_active"`
}

// EventFromSource decodes a search hit's _source into an Event.
func EventFromSource(src map[string]any) (Event, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return Event{}, fmt.Errorf("failed to re-encode event source: %w", err)
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event source: %w", err)
	}

	return ev, nil
}
