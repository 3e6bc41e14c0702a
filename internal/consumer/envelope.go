package consumer

import (
	"context"

	"github.com/avataa-hq/avataa-events/internal/domain"
)

// Envelope wraps a change message with acknowledgment callbacks
type Envelope struct {
	Message *domain.ChangeMessage
	ack     func(context.Context) error
	nack    func(context.Context) error
}

// NewEnvelope creates a new message envelope
func NewEnvelope(message *domain.ChangeMessage, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Message: message,
		ack:     ack,
		nack:    nack,
	}
}

// Ack acknowledges successful processing
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack negatively acknowledges processing, leaving the message for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}
