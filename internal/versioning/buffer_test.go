package versioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avataa-hq/avataa-events/internal/repository"
)

type recordingStore struct {
	bulkCalls [][]repository.BulkAction
	bulkErr   error
}

func (r *recordingStore) Search(_ context.Context, _ string, _ map[string]any) (*repository.SearchResult, error) {
	return &repository.SearchResult{}, nil
}

func (r *recordingStore) Bulk(_ context.Context, actions []repository.BulkAction) error {
	r.bulkCalls = append(r.bulkCalls, actions)
	return r.bulkErr
}

func (r *recordingStore) EnsureIndexes(_ context.Context) error { return nil }
func (r *recordingStore) Ping(_ context.Context) error          { return nil }
func (r *recordingStore) Close() error                          { return nil }

func TestBulkBuffer_AutoFlushAtThreshold(t *testing.T) {
	store := &recordingStore{}
	buffer := NewBulkBuffer(store, "event_manager_object", 3)

	assert.NoError(t, buffer.AddCreate(context.Background(), "1:name:1:CREATED", map[string]any{"attribute": "name"}))
	assert.NoError(t, buffer.AddSupersede(context.Background(), "1:name:1:CREATED", map[string]any{"is_active": false}))
	assert.Empty(t, store.bulkCalls)
	assert.Equal(t, 2, buffer.Len())

	assert.NoError(t, buffer.AddCreate(context.Background(), "1:name:2:UPDATED", map[string]any{"attribute": "name"}))
	assert.Len(t, store.bulkCalls, 1)
	assert.Len(t, store.bulkCalls[0], 3)
	assert.Equal(t, 0, buffer.Len())
}

func TestBulkBuffer_FlushClearsEvenOnError(t *testing.T) {
	store := &recordingStore{bulkErr: errors.New("store unavailable")}
	buffer := NewBulkBuffer(store, "event_manager_object", 0)

	assert.NoError(t, buffer.AddCreate(context.Background(), "1:name:1:CREATED", map[string]any{}))
	assert.Error(t, buffer.Flush(context.Background()))
	assert.Equal(t, 0, buffer.Len())

	// Nothing left to resend: the failed batch is not retried by the buffer.
	assert.NoError(t, buffer.Flush(context.Background()))
	assert.Len(t, store.bulkCalls, 1)
}

func TestBulkBuffer_EmptyFlushSkipsStore(t *testing.T) {
	store := &recordingStore{}
	buffer := NewBulkBuffer(store, "event_manager_object", 10)

	assert.NoError(t, buffer.Flush(context.Background()))
	assert.Empty(t, store.bulkCalls)
}

func TestBulkBuffer_ActionShapes(t *testing.T) {
	store := &recordingStore{}
	buffer := NewBulkBuffer(store, "event_manager_parameter", 10)

	doc := map[string]any{"attribute": "value"}
	assert.NoError(t, buffer.AddCreate(context.Background(), "7:value:1:CREATED", doc))
	assert.NoError(t, buffer.AddSupersede(context.Background(), "7:value:1:CREATED", map[string]any{
		"valid_to":  "2024-03-01T00:00:00.000000Z",
		"is_active": false,
	}))
	assert.NoError(t, buffer.Flush(context.Background()))

	actions := store.bulkCalls[0]
	assert.Equal(t, repository.BulkOpCreate, actions[0].Op)
	assert.Equal(t, "event_manager_parameter", actions[0].Index)
	assert.Equal(t, "7:value:1:CREATED", actions[0].DocID)
	assert.Equal(t, doc, actions[0].Doc)

	assert.Equal(t, repository.BulkOpUpdate, actions[1].Op)
	assert.Equal(t, map[string]any{
		"valid_to":  "2024-03-01T00:00:00.000000Z",
		"is_active": false,
	}, actions[1].Doc)
}

func TestNewBulkBuffer_NonPositiveBatchSizeUsesDefault(t *testing.T) {
	buffer := NewBulkBuffer(&recordingStore{}, "event_manager_object", -1)
	assert.Equal(t, DefaultBulkBatchSize, buffer.batchSize)
}
