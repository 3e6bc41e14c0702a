package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/domain"
	"github.com/avataa-hq/avataa-events/internal/repository"
)

// Store implements repository.EventStore on Elasticsearch
type Store struct {
	client *Client
	log    *zap.Logger
}

// NewStore creates a new Elasticsearch-backed event store
func NewStore(client *Client, log *zap.Logger) *Store {
	return &Store{
		client: client,
		log:    log,
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Index  string         `json:"_index"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a query body against an index or index pattern
func (s *Store) Search(ctx context.Context, index string, body map[string]any) (*repository.SearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	es := s.client.ES()
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search on index %s returned %s", index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := &repository.SearchResult{
		Hits:  make([]repository.Hit, 0, len(parsed.Hits.Hits)),
		Total: parsed.Hits.Total.Value,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, repository.Hit{
			ID:     hit.ID,
			Index:  hit.Index,
			Source: hit.Source,
		})
	}

	return result, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Bulk sends buffered write operations as one call. Create conflicts are
// duplicates of already-applied writes and are logged, not failed; other
// per-item errors are reported without blocking sibling items.
func (s *Store) Bulk(ctx context.Context, actions []repository.BulkAction) error {
	if len(actions) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, action := range actions {
		header := map[string]any{
			string(action.Op): map[string]any{
				"_index": action.Index,
				"_id":    action.DocID,
			},
		}
		if err := enc.Encode(header); err != nil {
			return fmt.Errorf("failed to encode bulk header: %w", err)
		}

		payload := action.Doc
		if action.Op == repository.BulkOpUpdate {
			payload = map[string]any{"doc": action.Doc}
		}
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode bulk payload: %w", err)
		}
	}

	es := s.client.ES()
	res, err := es.Bulk(&buf, es.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request returned %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}

	if parsed.Errors {
		s.reportItemFailures(parsed)
	}

	return nil
}

func (s *Store) reportItemFailures(parsed bulkResponse) {
	for _, item := range parsed.Items {
		for op, detail := range item {
			if detail.Error == nil {
				continue
			}

			if op == string(repository.BulkOpCreate) && detail.Status == 409 {
				s.log.Debug("Skipped duplicate event document",
					zap.String("doc_id", detail.ID))
				continue
			}

			s.log.Warn("Bulk item failed",
				zap.String("op", op),
				zap.String("doc_id", detail.ID),
				zap.Int("status", detail.Status),
				zap.String("error_type", detail.Error.Type),
				zap.String("reason", detail.Error.Reason))
		}
	}
}

// EnsureIndexes creates the per-kind event indexes when missing
func (s *Store) EnsureIndexes(ctx context.Context) error {
	es := s.client.ES()

	for _, instance := range domain.Instances() {
		index := instance.Index()

		exists, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", index, err)
		}
		exists.Body.Close()
		if exists.StatusCode == 200 {
			continue
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(eventIndexBody()); err != nil {
			return fmt.Errorf("failed to encode index body: %w", err)
		}

		res, err := es.Indices.Create(index,
			es.Indices.Create.WithContext(ctx),
			es.Indices.Create.WithBody(&buf),
		)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", index, err)
		}
		res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("index creation for %s returned %s", index, res.Status())
		}

		s.log.Info("Created event index", zap.String("index", index))
	}

	return nil
}

// Ping checks if Elasticsearch is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.ping(ctx)
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
