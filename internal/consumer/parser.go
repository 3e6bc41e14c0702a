package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/avataa-hq/avataa-events/internal/domain"
)

// changePayload is the wire shape of an inventory change message: kind and
// event tags, optional actor metadata and the snapshot batch.
type changePayload struct {
	Instance  string           `json:"instance"`
	EventType string           `json:"event_type"`
	UserID    *string          `json:"user_id"`
	SessionID *string          `json:"session_id"`
	Objects   []map[string]any `json:"objects"`
}

// JSONChangeParser implements MessageParser for JSON-formatted change messages
type JSONChangeParser struct{}

// NewJSONChangeParser creates a new JSON change message parser
func NewJSONChangeParser() *JSONChangeParser {
	return &JSONChangeParser{}
}

// Parse parses a JSON message body into a ChangeMessage. Unknown instance or
// event tags are parse errors: they mean schema drift, so the message cannot
// be retried into success.
func (p *JSONChangeParser) Parse(body []byte) (*domain.ChangeMessage, error) {
	var payload changePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	instance, err := domain.ParseInstance(payload.Instance)
	if err != nil {
		return nil, err
	}

	eventType, err := domain.ParseEventType(payload.EventType)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.Snapshot, 0, len(payload.Objects))
	for _, object := range payload.Objects {
		snapshots = append(snapshots, domain.Snapshot(object))
	}

	return &domain.ChangeMessage{
		Instance:  instance,
		EventType: eventType,
		UserID:    payload.UserID,
		SessionID: payload.SessionID,
		Snapshots: snapshots,
	}, nil
}
