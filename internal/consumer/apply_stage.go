package consumer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/domain"
	"github.com/avataa-hq/avataa-events/internal/versioning"
)

// ChangeProcessor applies one change message's snapshot batch.
type ChangeProcessor interface {
	Process(ctx context.Context, instance domain.Instance, eventType domain.EventType, snapshots []domain.Snapshot, actor versioning.Actor) error
}

// ApplyStage drives the versioning engine with parsed change messages and
// settles their acknowledgment.
type ApplyStage struct {
	engine ChangeProcessor
	log    *zap.Logger
}

// NewApplyStage creates a new apply stage
func NewApplyStage(engine ChangeProcessor, log *zap.Logger) *ApplyStage {
	return &ApplyStage{
		engine: engine,
		log:    log,
	}
}

// Start consumes envelopes until the input closes or the context ends.
func (a *ApplyStage) Start(ctx context.Context, in <-chan *Envelope) {
	for {
		select {
		case <-ctx.Done():
			a.log.Info("Apply stage shutting down")
			return
		case envelope, ok := <-in:
			if !ok {
				a.log.Info("Apply stage input channel closed")
				return
			}

			a.applyMessage(ctx, envelope)
		}
	}
}

// applyMessage runs one Process call. Configuration errors are acked away:
// retrying schema drift cannot succeed. Store errors are nacked so SQS
// redelivers; the deterministic record ids make the replay safe.
func (a *ApplyStage) applyMessage(ctx context.Context, envelope *Envelope) {
	msg := envelope.Message

	actor := versioning.Actor{
		UserID:    msg.UserID,
		SessionID: msg.SessionID,
	}

	err := a.engine.Process(ctx, msg.Instance, msg.EventType, msg.Snapshots, actor)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownInstance) || errors.Is(err, domain.ErrUnknownEventType) {
			a.log.Error("Dropping change message with unsupported tags",
				zap.String("instance", string(msg.Instance)),
				zap.String("event_type", string(msg.EventType)),
				zap.Error(err))
			if ackErr := envelope.Ack(ctx); ackErr != nil {
				a.log.Error("Failed to ack unsupported message", zap.Error(ackErr))
			}
			return
		}

		a.log.Error("Failed to apply change message",
			zap.String("instance", string(msg.Instance)),
			zap.String("event_type", string(msg.EventType)),
			zap.Int("snapshot_count", len(msg.Snapshots)),
			zap.Error(err))
		if nackErr := envelope.Nack(ctx); nackErr != nil {
			a.log.Error("Failed to nack change message", zap.Error(nackErr))
		}
		return
	}

	a.log.Info("Applied change message",
		zap.String("instance", string(msg.Instance)),
		zap.String("event_type", string(msg.EventType)),
		zap.Int("snapshot_count", len(msg.Snapshots)))

	if err := envelope.Ack(ctx); err != nil {
		a.log.Error("Failed to ack change message", zap.Error(err))
	}
}
