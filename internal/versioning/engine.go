package versioning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/converter"
	"github.com/avataa-hq/avataa-events/internal/domain"
	"github.com/avataa-hq/avataa-events/internal/repository"
)

// searchPageSize bounds active-event reads; an entity never carries anywhere
// near this many attributes.
const searchPageSize = 10_000

// ValueConverter turns a raw parameter value into its typed form.
type ValueConverter interface {
	Convert(ctx context.Context, param converter.ParameterSnapshot) (any, error)
}

// Actor carries optional identity metadata attached to every emitted event.
type Actor struct {
	UserID    *string
	SessionID *string
}

// Engine is the attribute-diff state machine. It consumes snapshot batches,
// decides per (entity, attribute) pair whether the value changed, closes the
// superseded version and assigns the next one.
//
// Process handles its batch sequentially: later items' diff decisions may
// depend on active-event state an earlier item just changed. Independent
// entities or kinds are safe to process from parallel workers, each call
// owning its own buffer.
type Engine struct {
	store     repository.EventStore
	converter ValueConverter
	batchSize int
	log       *zap.Logger
}

// NewEngine creates a versioning engine. A non-positive batchSize selects the
// default flush threshold.
func NewEngine(store repository.EventStore, conv ValueConverter, batchSize int, log *zap.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}

	return &Engine{
		store:     store,
		converter: conv,
		batchSize: batchSize,
		log:       log,
	}
}

// Process applies one snapshot batch of the given event kind. Snapshots
// missing required fields are dropped silently; unknown kinds are fatal
// configuration errors. Buffered writes are flushed before returning.
func (e *Engine) Process(ctx context.Context, instance domain.Instance, eventType domain.EventType, snapshots []domain.Snapshot, actor Actor) error {
	if instance.Index() == "" {
		return fmt.Errorf("%w: %q", domain.ErrUnknownInstance, string(instance))
	}

	buffer := NewBulkBuffer(e.store, instance.Index(), e.batchSize)

	for _, snapshot := range snapshots {
		if !snapshot.HasRequired(instance) {
			e.log.Debug("Dropping snapshot without required fields",
				zap.String("instance", string(instance)))
			continue
		}

		var err error
		switch eventType {
		case domain.EventTypeCreated:
			err = e.create(ctx, buffer, instance, snapshot, actor)
		case domain.EventTypeUpdated:
			err = e.update(ctx, buffer, instance, snapshot, actor)
		case domain.EventTypeDeleted:
			err = e.delete(ctx, buffer, instance, snapshot, actor)
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownEventType, string(eventType))
		}

		if err != nil {
			return err
		}
	}

	return buffer.Flush(ctx)
}

// create emits a version-1 event for every attribute outside the stop-list.
func (e *Engine) create(ctx context.Context, buffer *BulkBuffer, instance domain.Instance, snapshot domain.Snapshot, actor Actor) error {
	isParameter := instance == domain.InstanceParameter
	if isParameter {
		e.convertParameterValue(ctx, snapshot)
	}

	// Only parameters default a missing creation timestamp to "now"; the
	// other kinds fall back to the epoch.
	validFrom := domain.RecordingTimestamp(snapshot, "creation_date", "", isParameter)
	instanceID, _ := snapshot.Int64("id")
	stopList := instance.StopList()

	for attribute, value := range snapshot {
		if _, stopped := stopList[attribute]; stopped {
			continue
		}

		event := domain.Event{
			EventType:  domain.EventTypeCreated,
			NewValue:   value,
			UserID:     actor.UserID,
			SessionID:  actor.SessionID,
			InstanceID: instanceID,
			Attribute:  attribute,
			Version:    1,
			ValidFrom:  validFrom,
			IsActive:   true,
		}

		docID := domain.RecordID(instanceID, attribute, 1, domain.EventTypeCreated)
		if err := buffer.AddCreate(ctx, docID, event); err != nil {
			return err
		}
	}

	return nil
}

// update diffs the snapshot against the entity's active events. Equal values
// are no-ops; changed ones close the active version and open the next;
// attributes with no active event get a fresh version-1 event.
func (e *Engine) update(ctx context.Context, buffer *BulkBuffer, instance domain.Instance, snapshot domain.Snapshot, actor Actor) error {
	isParameter := instance == domain.InstanceParameter
	if isParameter {
		e.convertParameterValue(ctx, snapshot)
	}

	modifiedAt := domain.RecordingTimestamp(snapshot, "modification_date", "creation_date", isParameter)
	instanceID, _ := snapshot.Int64("id")

	updatable := make(map[string]any, len(snapshot))
	stopList := instance.StopList()
	for attribute, value := range snapshot {
		if _, stopped := stopList[attribute]; !stopped {
			updatable[attribute] = value
		}
	}

	attributes := make([]any, 0, len(updatable))
	for attribute := range updatable {
		attributes = append(attributes, attribute)
	}

	res, err := e.store.Search(ctx, instance.Index(), map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"instance_id": instanceID}},
					map[string]any{"term": map[string]any{"is_active": true}},
					map[string]any{"terms": map[string]any{"attribute": attributes}},
				},
			},
		},
		"size": searchPageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to read active events for instance %d: %w", instanceID, err)
	}

	processed := make(map[string]struct{}, len(res.Hits))

	for _, hit := range res.Hits {
		active, err := domain.EventFromSource(hit.Source)
		if err != nil {
			return err
		}

		processed[active.Attribute] = struct{}{}

		newValue := updatable[active.Attribute]
		if domain.ValuesEqual(active.NewValue, newValue) {
			continue
		}

		if err := buffer.AddSupersede(ctx, hit.ID, map[string]any{
			"valid_to":  modifiedAt,
			"is_active": false,
		}); err != nil {
			return err
		}

		nextVersion := active.Version + 1
		event := domain.Event{
			EventType:  domain.EventTypeUpdated,
			OldValue:   active.NewValue,
			NewValue:   newValue,
			UserID:     actor.UserID,
			SessionID:  actor.SessionID,
			InstanceID: instanceID,
			Attribute:  active.Attribute,
			Version:    nextVersion,
			ValidFrom:  modifiedAt,
			IsActive:   true,
		}

		docID := domain.RecordID(instanceID, active.Attribute, nextVersion, domain.EventTypeUpdated)
		if err := buffer.AddCreate(ctx, docID, event); err != nil {
			return err
		}
	}

	// Attributes seen for the first time start their own version chain.
	// They carry no old_value.
	for attribute, value := range updatable {
		if _, seen := processed[attribute]; seen {
			continue
		}

		event := domain.Event{
			EventType:  domain.EventTypeUpdated,
			NewValue:   value,
			UserID:     actor.UserID,
			SessionID:  actor.SessionID,
			InstanceID: instanceID,
			Attribute:  attribute,
			Version:    1,
			ValidFrom:  modifiedAt,
			IsActive:   true,
		}

		docID := domain.RecordID(instanceID, attribute, 1, domain.EventTypeUpdated)
		if err := buffer.AddCreate(ctx, docID, event); err != nil {
			return err
		}
	}

	return nil
}

// delete closes every active event of the entity and emits a DELETED
// successor per attribute carrying the final value as old_value.
func (e *Engine) delete(ctx context.Context, buffer *BulkBuffer, instance domain.Instance, snapshot domain.Snapshot, actor Actor) error {
	modifiedAt := domain.RecordingTimestamp(snapshot, "modification_date", "creation_date", false)
	instanceID, _ := snapshot.Int64("id")

	res, err := e.store.Search(ctx, instance.Index(), map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"instance_id": instanceID}},
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
		"size": searchPageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to read active events for instance %d: %w", instanceID, err)
	}

	for _, hit := range res.Hits {
		active, err := domain.EventFromSource(hit.Source)
		if err != nil {
			return err
		}

		nextVersion := active.Version + 1
		event := domain.Event{
			EventType:  domain.EventTypeDeleted,
			OldValue:   active.NewValue,
			UserID:     actor.UserID,
			SessionID:  actor.SessionID,
			InstanceID: instanceID,
			Attribute:  active.Attribute,
			Version:    nextVersion,
			ValidFrom:  modifiedAt,
			IsActive:   false,
		}

		docID := domain.RecordID(instanceID, active.Attribute, nextVersion, domain.EventTypeDeleted)
		if err := buffer.AddCreate(ctx, docID, event); err != nil {
			return err
		}

		if err := buffer.AddSupersede(ctx, hit.ID, map[string]any{
			"valid_to":  modifiedAt,
			"is_active": false,
		}); err != nil {
			return err
		}
	}

	return nil
}

// convertParameterValue routes the raw value through the converter. Failures
// degrade to the raw untransformed value and are never fatal.
func (e *Engine) convertParameterValue(ctx context.Context, snapshot domain.Snapshot) {
	instanceID, _ := snapshot.Int64("id")
	value, _ := snapshot.String("value")
	moID, _ := snapshot.Int64("mo_id")

	tprmID, ok := snapshot.Int64("tprm_id")
	if !ok {
		e.log.Warn("Can not convert parameter value: missing tprm_id",
			zap.Int64("instance_id", instanceID))
		return
	}

	converted, err := e.converter.Convert(ctx, converter.ParameterSnapshot{
		ID:     instanceID,
		Value:  value,
		MoID:   moID,
		TprmID: tprmID,
	})
	if err != nil {
		e.log.Warn("Can not convert parameter value",
			zap.Int64("instance_id", instanceID),
			zap.Int64("tprm_id", tprmID),
			zap.Error(err))
		return
	}

	snapshot["value"] = converted
}
