package domain

import (
	"fmt"
	"strconv"
)

// Snapshot is the full raw attribute set of an entity at the moment a change
// message was produced. It is transient: it lives for one Process call.
type Snapshot map[string]any

// Int64 reads an integer attribute, coping with the numeric types JSON
// decoding produces.
func (s Snapshot) Int64(key string) (int64, bool) {
	switch v := s[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// String reads an attribute coerced to its string form.
func (s Snapshot) String(key string) (string, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return "", false
	}
	if str, ok := v.(string); ok {
		return str, true
	}
	return fmt.Sprint(v), true
}

// HasRequired reports whether the snapshot carries the fields ingestion
// demands: id and version for every kind, plus value for parameters.
// Snapshots failing this check are dropped without an event.
func (s Snapshot) HasRequired(instance Instance) bool {
	required := []string{"id", "version"}
	if instance == InstanceParameter {
		required = append(required, "value")
	}

	for _, attr := range required {
		if v, ok := s[attr]; !ok || v == nil {
			return false
		}
	}
	return true
}

// ChangeMessage is the ingestion contract delivered by the transport layer:
// one kind tag, one event kind, an ordered batch of snapshots and optional
// actor metadata.
type ChangeMessage struct {
	Instance  Instance
	EventType EventType
	UserID    *string
	SessionID *string
	Snapshots []Snapshot
}
