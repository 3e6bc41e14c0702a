package versioning

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/converter"
	"github.com/avataa-hq/avataa-events/internal/domain"
	"github.com/avataa-hq/avataa-events/internal/repository"
)

// fakeEventStore keeps documents in memory and honors the create-vs-update
// bulk semantics: a create never overwrites an existing identifier, an update
// merges its partial document into the stored source.
type fakeEventStore struct {
	docs       map[string]map[string]map[string]any
	duplicates []string
	searchErr  error
	bulkErr    error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{docs: make(map[string]map[string]map[string]any)}
}

func (f *fakeEventStore) Search(_ context.Context, index string, body map[string]any) (*repository.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	filters := extractFilters(body)

	var hits []repository.Hit
	for docID, src := range f.docs[index] {
		if matchesFilters(src, filters) {
			hits = append(hits, repository.Hit{ID: docID, Index: index, Source: src})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })

	return &repository.SearchResult{Hits: hits, Total: int64(len(hits))}, nil
}

func (f *fakeEventStore) Bulk(_ context.Context, actions []repository.BulkAction) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}

	for _, action := range actions {
		if f.docs[action.Index] == nil {
			f.docs[action.Index] = make(map[string]map[string]any)
		}

		switch action.Op {
		case repository.BulkOpCreate:
			if _, exists := f.docs[action.Index][action.DocID]; exists {
				f.duplicates = append(f.duplicates, action.DocID)
				continue
			}
			f.docs[action.Index][action.DocID] = toSource(action.Doc)
		case repository.BulkOpUpdate:
			existing := f.docs[action.Index][action.DocID]
			for k, v := range toSource(action.Doc) {
				existing[k] = v
			}
		}
	}

	return nil
}

func (f *fakeEventStore) EnsureIndexes(_ context.Context) error { return nil }
func (f *fakeEventStore) Ping(_ context.Context) error          { return nil }
func (f *fakeEventStore) Close() error                          { return nil }

func (f *fakeEventStore) events(t *testing.T, index string) []domain.Event {
	t.Helper()

	ids := make([]string, 0, len(f.docs[index]))
	for docID := range f.docs[index] {
		ids = append(ids, docID)
	}
	sort.Strings(ids)

	events := make([]domain.Event, 0, len(ids))
	for _, docID := range ids {
		ev, err := domain.EventFromSource(f.docs[index][docID])
		assert.NoError(t, err)
		events = append(events, ev)
	}
	return events
}

func (f *fakeEventStore) eventsFor(t *testing.T, index, attribute string) []domain.Event {
	t.Helper()

	var events []domain.Event
	for _, ev := range f.events(t, index) {
		if ev.Attribute == attribute {
			events = append(events, ev)
		}
	}
	return events
}

func toSource(doc any) map[string]any {
	raw, _ := json.Marshal(doc)
	var src map[string]any
	_ = json.Unmarshal(raw, &src)
	return src
}

func extractFilters(body map[string]any) []any {
	query, _ := body["query"].(map[string]any)
	boolQuery, _ := query["bool"].(map[string]any)
	filters, _ := boolQuery["filter"].([]any)
	return filters
}

func matchesFilters(src map[string]any, filters []any) bool {
	for _, f := range filters {
		clause, _ := f.(map[string]any)

		if term, ok := clause["term"].(map[string]any); ok {
			for field, want := range term {
				if fmt.Sprint(src[field]) != fmt.Sprint(want) {
					return false
				}
			}
		}

		if terms, ok := clause["terms"].(map[string]any); ok {
			for field, wanted := range terms {
				values, _ := wanted.([]any)
				found := false
				for _, v := range values {
					if fmt.Sprint(src[field]) == fmt.Sprint(v) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
		}
	}
	return true
}

type stubValueConverter struct {
	fn    func(converter.ParameterSnapshot) (any, error)
	calls []converter.ParameterSnapshot
}

func (s *stubValueConverter) Convert(_ context.Context, param converter.ParameterSnapshot) (any, error) {
	s.calls = append(s.calls, param)
	if s.fn != nil {
		return s.fn(param)
	}
	return param.Value, nil
}

func newTestEngine(store repository.EventStore) *Engine {
	return NewEngine(store, &stubValueConverter{}, 0, zap.NewNop())
}

func objectSnapshot(id int64, attrs map[string]any) domain.Snapshot {
	snap := domain.Snapshot{
		"id":            float64(id),
		"version":       float64(1),
		"creation_date": "2024-03-01T00:00:00Z",
	}
	for k, v := range attrs {
		snap[k] = v
	}
	return snap
}

func TestEngine_CreateEmitsVersionOnePerAttribute(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)
	user := "14"

	snap := objectSnapshot(42, map[string]any{
		"name":              "router-1",
		"tmo_id":            float64(3),
		"modification_date": "2024-03-01T00:00:00Z",
	})

	err := engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{UserID: &user})
	assert.NoError(t, err)

	events := store.events(t, domain.IndexObject)
	assert.Len(t, events, 2)

	attributes := map[string]bool{}
	for _, ev := range events {
		attributes[ev.Attribute] = true
		assert.Equal(t, domain.EventTypeCreated, ev.EventType)
		assert.Equal(t, int64(42), ev.InstanceID)
		assert.Equal(t, 1, ev.Version)
		assert.Equal(t, "2024-03-01T00:00:00.000000Z", ev.ValidFrom)
		assert.True(t, ev.IsActive)
		assert.Nil(t, ev.ValidTo)
		assert.Nil(t, ev.OldValue)
		assert.Equal(t, &user, ev.UserID)
	}

	// Identity and system attributes never become events.
	assert.True(t, attributes["name"])
	assert.True(t, attributes["tmo_id"])
	assert.False(t, attributes["id"])
	assert.False(t, attributes["version"])
	assert.False(t, attributes["creation_date"])
	assert.False(t, attributes["modification_date"])
}

func TestEngine_CreateReplayIsRejectedAsDuplicate(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	snap := objectSnapshot(42, map[string]any{"name": "router-1"})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{}))

	replayed := objectSnapshot(42, map[string]any{"name": "router-other"})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{replayed}, Actor{}))

	events := store.eventsFor(t, domain.IndexObject, "name")
	assert.Len(t, events, 1)
	assert.Equal(t, "router-1", events[0].NewValue)
	assert.Contains(t, store.duplicates, "42:name:1:CREATED")
}

func TestEngine_UpdateNoOpWhenValueUnchanged(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	snap := objectSnapshot(42, map[string]any{"name": "router-1"})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{}))

	unchanged := objectSnapshot(42, map[string]any{
		"name":              "router-1",
		"modification_date": "2024-03-02T00:00:00Z",
	})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeUpdated,
		[]domain.Snapshot{unchanged}, Actor{}))

	events := store.eventsFor(t, domain.IndexObject, "name")
	assert.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Version)
	assert.True(t, events[0].IsActive)
	assert.Nil(t, events[0].ValidTo)
}

func TestEngine_UpdateSupersedesAndIncrementsVersion(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	snap := objectSnapshot(42, map[string]any{"name": "router-1"})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{}))

	changed := objectSnapshot(42, map[string]any{
		"name":              "router-2",
		"modification_date": "2024-03-02T00:00:00Z",
	})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeUpdated,
		[]domain.Snapshot{changed}, Actor{}))

	events := store.eventsFor(t, domain.IndexObject, "name")
	assert.Len(t, events, 2)

	var active, closed *domain.Event
	for i := range events {
		if events[i].IsActive {
			active = &events[i]
		} else {
			closed = &events[i]
		}
	}

	assert.NotNil(t, closed)
	assert.Equal(t, 1, closed.Version)
	assert.NotNil(t, closed.ValidTo)
	assert.Equal(t, "2024-03-02T00:00:00.000000Z", *closed.ValidTo)

	assert.NotNil(t, active)
	assert.Equal(t, domain.EventTypeUpdated, active.EventType)
	assert.Equal(t, 2, active.Version)
	assert.Equal(t, "router-1", active.OldValue)
	assert.Equal(t, "router-2", active.NewValue)
	assert.Equal(t, "2024-03-02T00:00:00.000000Z", active.ValidFrom)
	assert.Nil(t, active.ValidTo)
}

func TestEngine_UpdateUnseenAttributeStartsOwnChain(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	snap := objectSnapshot(42, map[string]any{"name": "router-1"})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{}))

	withNewAttr := objectSnapshot(42, map[string]any{
		"name":              "router-1",
		"location":          "rack-9",
		"modification_date": "2024-03-02T00:00:00Z",
	})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeUpdated,
		[]domain.Snapshot{withNewAttr}, Actor{}))

	events := store.eventsFor(t, domain.IndexObject, "location")
	assert.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeUpdated, events[0].EventType)
	assert.Equal(t, 1, events[0].Version)
	assert.Nil(t, events[0].OldValue)
	assert.Equal(t, "rack-9", events[0].NewValue)
	assert.True(t, events[0].IsActive)
}

func TestEngine_DeleteClosesEveryActiveEvent(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	snap := objectSnapshot(42, map[string]any{
		"name":   "router-1",
		"tmo_id": float64(3),
	})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{}))

	tombstone := objectSnapshot(42, map[string]any{
		"modification_date": "2024-03-05T00:00:00Z",
	})
	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeDeleted,
		[]domain.Snapshot{tombstone}, Actor{}))

	events := store.events(t, domain.IndexObject)
	assert.Len(t, events, 4)

	deletedByAttr := map[string]domain.Event{}
	for _, ev := range events {
		assert.False(t, ev.IsActive, "attribute %s version %d should be closed", ev.Attribute, ev.Version)
		if ev.EventType == domain.EventTypeDeleted {
			deletedByAttr[ev.Attribute] = ev
		} else {
			assert.NotNil(t, ev.ValidTo)
		}
	}

	assert.Len(t, deletedByAttr, 2)
	assert.Equal(t, "router-1", deletedByAttr["name"].OldValue)
	assert.Nil(t, deletedByAttr["name"].NewValue)
	assert.Equal(t, 2, deletedByAttr["name"].Version)
	assert.Equal(t, "2024-03-05T00:00:00.000000Z", deletedByAttr["name"].ValidFrom)
}

func TestEngine_AtMostOneActivePerAttribute(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{objectSnapshot(42, map[string]any{"name": "a"})}, Actor{}))

	for i, name := range []string{"b", "c", "d"} {
		snap := objectSnapshot(42, map[string]any{
			"name":              name,
			"modification_date": fmt.Sprintf("2024-03-0%dT00:00:00Z", i+2),
		})
		assert.NoError(t, engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeUpdated,
			[]domain.Snapshot{snap}, Actor{}))
	}

	events := store.eventsFor(t, domain.IndexObject, "name")
	assert.Len(t, events, 4)

	activeCount := 0
	versions := map[int]bool{}
	for _, ev := range events {
		versions[ev.Version] = true
		if ev.IsActive {
			activeCount++
			assert.Equal(t, 4, ev.Version)
			assert.Equal(t, "d", ev.NewValue)
		}
	}

	assert.Equal(t, 1, activeCount)
	for v := 1; v <= 4; v++ {
		assert.True(t, versions[v], "version %d missing", v)
	}
}

func TestEngine_SnapshotMissingRequiredFieldsIsDropped(t *testing.T) {
	store := newFakeEventStore()
	engine := newTestEngine(store)

	invalid := domain.Snapshot{"id": float64(42), "name": "router-1"}
	valid := objectSnapshot(43, map[string]any{"name": "router-2"})

	err := engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeCreated,
		[]domain.Snapshot{invalid, valid}, Actor{})
	assert.NoError(t, err)

	events := store.events(t, domain.IndexObject)
	for _, ev := range events {
		assert.Equal(t, int64(43), ev.InstanceID)
	}
	assert.NotEmpty(t, events)
}

func TestEngine_UnsupportedEventTypeFails(t *testing.T) {
	engine := newTestEngine(newFakeEventStore())

	err := engine.Process(context.Background(), domain.InstanceObject, domain.EventTypeArchived,
		[]domain.Snapshot{objectSnapshot(42, map[string]any{"name": "x"})}, Actor{})
	assert.ErrorIs(t, err, domain.ErrUnknownEventType)
}

func TestEngine_UnknownInstanceFails(t *testing.T) {
	engine := newTestEngine(newFakeEventStore())

	err := engine.Process(context.Background(), domain.Instance("VENDOR"), domain.EventTypeCreated, nil, Actor{})
	assert.ErrorIs(t, err, domain.ErrUnknownInstance)
}

func TestEngine_ParameterValueIsConverted(t *testing.T) {
	store := newFakeEventStore()
	conv := &stubValueConverter{fn: func(p converter.ParameterSnapshot) (any, error) {
		return int64(120), nil
	}}
	engine := NewEngine(store, conv, 0, zap.NewNop())

	snap := domain.Snapshot{
		"id":      float64(7),
		"version": float64(1),
		"value":   "120",
		"mo_id":   float64(42),
		"tprm_id": float64(9),
	}

	err := engine.Process(context.Background(), domain.InstanceParameter, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{})
	assert.NoError(t, err)

	assert.Len(t, conv.calls, 1)
	assert.Equal(t, int64(7), conv.calls[0].ID)
	assert.Equal(t, "120", conv.calls[0].Value)
	assert.Equal(t, int64(9), conv.calls[0].TprmID)

	events := store.eventsFor(t, domain.IndexParameter, "value")
	assert.Len(t, events, 1)
	assert.Equal(t, float64(120), events[0].NewValue)
}

func TestEngine_ParameterConversionFailureKeepsRawValue(t *testing.T) {
	store := newFakeEventStore()
	conv := &stubValueConverter{fn: func(p converter.ParameterSnapshot) (any, error) {
		return nil, converter.ErrLinkNotFound
	}}
	engine := NewEngine(store, conv, 0, zap.NewNop())

	snap := domain.Snapshot{
		"id":      float64(7),
		"version": float64(1),
		"value":   "120",
		"tprm_id": float64(9),
	}

	err := engine.Process(context.Background(), domain.InstanceParameter, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{})
	assert.NoError(t, err)

	events := store.eventsFor(t, domain.IndexParameter, "value")
	assert.Len(t, events, 1)
	assert.Equal(t, "120", events[0].NewValue)
}

func TestEngine_ParameterMissingTprmIDSkipsConversion(t *testing.T) {
	store := newFakeEventStore()
	conv := &stubValueConverter{}
	engine := NewEngine(store, conv, 0, zap.NewNop())

	snap := domain.Snapshot{
		"id":      float64(7),
		"version": float64(1),
		"value":   "raw",
	}

	err := engine.Process(context.Background(), domain.InstanceParameter, domain.EventTypeCreated,
		[]domain.Snapshot{snap}, Actor{})
	assert.NoError(t, err)
	assert.Empty(t, conv.calls)

	events := store.eventsFor(t, domain.IndexParameter, "value")
	assert.Len(t, events, 1)
	assert.Equal(t, "raw", events[0].NewValue)
}
