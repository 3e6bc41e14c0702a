package consumer

import (
	"github.com/avataa-hq/avataa-events/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into
// inventory change messages
type MessageParser interface {
	Parse(body []byte) (*domain.ChangeMessage, error)
}
