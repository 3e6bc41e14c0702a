package repository

import "context"

// Hit is one matched document returned by a search.
type Hit struct {
	ID     string
	Index  string
	Source map[string]any
}

// SearchResult carries the matched page plus the exact total.
type SearchResult struct {
	Hits  []Hit
	Total int64
}

// BulkOp selects how a buffered document is written.
type BulkOp string

const (
	// BulkOpCreate writes a new document; an existing identifier is a
	// rejected duplicate, never an overwrite.
	BulkOpCreate BulkOp = "create"
	// BulkOpUpdate applies a partial document touching only the listed fields.
	BulkOpUpdate BulkOp = "update"
)

// BulkAction pairs an operation header with its payload.
type BulkAction struct {
	Op    BulkOp
	Index string
	DocID string
	Doc   any
}

// EventStore defines the operations the engine and query layer need from the
// backing search-indexed store.
type EventStore interface {
	// Search runs a native query body against an index or index pattern.
	Search(ctx context.Context, index string, body map[string]any) (*SearchResult, error)

	// Bulk sends buffered write operations as one call. Per-item failures
	// are reported without blocking sibling items.
	Bulk(ctx context.Context, actions []BulkAction) error

	// EnsureIndexes creates the per-kind event indexes when missing.
	EnsureIndexes(ctx context.Context) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close releases client resources.
	Close() error
}
