package versioning

import (
	"context"

	"github.com/avataa-hq/avataa-events/internal/repository"
)

// DefaultBulkBatchSize is the logical-operation threshold triggering an
// automatic flush.
const DefaultBulkBatchSize = 10_000

// BulkBuffer accumulates create and supersede operations for one index and
// flushes them in bounded batches. The buffer holds caller-owned mutable
// state: construct one per Process call, never share across goroutines.
type BulkBuffer struct {
	store     repository.EventStore
	index     string
	batchSize int
	actions   []repository.BulkAction
}

// NewBulkBuffer creates a buffer targeting one index
func NewBulkBuffer(store repository.EventStore, index string, batchSize int) *BulkBuffer {
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}

	return &BulkBuffer{
		store:     store,
		index:     index,
		batchSize: batchSize,
	}
}

// AddCreate buffers a create-only write; an existing identifier is rejected
// by the store as a duplicate, not overwritten.
func (b *BulkBuffer) AddCreate(ctx context.Context, docID string, doc any) error {
	b.actions = append(b.actions, repository.BulkAction{
		Op:    repository.BulkOpCreate,
		Index: b.index,
		DocID: docID,
		Doc:   doc,
	})

	return b.flushOnLimit(ctx)
}

// AddSupersede buffers a partial update touching only the mutated fields.
func (b *BulkBuffer) AddSupersede(ctx context.Context, docID string, partial map[string]any) error {
	b.actions = append(b.actions, repository.BulkAction{
		Op:    repository.BulkOpUpdate,
		Index: b.index,
		DocID: docID,
		Doc:   partial,
	})

	return b.flushOnLimit(ctx)
}

// Len reports the number of buffered logical operations.
func (b *BulkBuffer) Len() int {
	return len(b.actions)
}

func (b *BulkBuffer) flushOnLimit(ctx context.Context) error {
	if len(b.actions) >= b.batchSize {
		return b.Flush(ctx)
	}
	return nil
}

// Flush sends all buffered operations as one store call. The buffer is
// cleared whether or not the call succeeds; redelivery relies on the
// deterministic record identifiers to reject replayed creates.
func (b *BulkBuffer) Flush(ctx context.Context) error {
	if len(b.actions) == 0 {
		return nil
	}

	actions := b.actions
	b.actions = nil

	return b.store.Bulk(ctx, actions)
}
