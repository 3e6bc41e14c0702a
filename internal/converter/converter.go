package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/domain"
	"github.com/avataa-hq/avataa-events/internal/repository"
)

// ErrLinkNotFound reports a link value whose referenced entity has no
// currently active display event.
var ErrLinkNotFound = errors.New("linked instance has no active event")

// ParameterSnapshot is the slice of a parameter snapshot conversion needs.
type ParameterSnapshot struct {
	ID     int64
	Value  string
	MoID   int64
	TprmID int64
}

// Converter resolves a parameter's declared type from active parameter-type
// metadata events and coerces raw values accordingly.
type Converter struct {
	store repository.EventStore
	log   *zap.Logger
}

// New creates a new value converter
func New(store repository.EventStore, log *zap.Logger) *Converter {
	return &Converter{
		store: store,
		log:   log,
	}
}

// Convert produces the typed value for a raw parameter value. The parameter
// type's "multiple" and "val_type" declarations are point lookups against the
// active metadata events; a missing val_type defaults to string pass-through.
func (c *Converter) Convert(ctx context.Context, param ParameterSnapshot) (any, error) {
	multiple, _, err := c.typeAttribute(ctx, param.TprmID, "multiple")
	if err != nil {
		return nil, err
	}

	valType, found, err := c.typeAttribute(ctx, param.TprmID, "val_type")
	if err != nil {
		return nil, err
	}

	declared := "string"
	if found {
		if s, ok := valType.(string); ok && s != "" {
			declared = s
		}
	}

	if isTruthy(multiple) {
		return c.convertMultiple(ctx, param.Value, declared)
	}

	return c.convertSingle(ctx, param.Value, declared)
}

// typeAttribute fetches the active metadata event's new_value for one
// parameter-type attribute.
func (c *Converter) typeAttribute(ctx context.Context, parameterTypeID int64, attribute string) (any, bool, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"instance_id": parameterTypeID}},
					map[string]any{"term": map[string]any{"attribute": attribute}},
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
	}

	res, err := c.store.Search(ctx, domain.IndexParameterType, body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up parameter type attribute %q: %w", attribute, err)
	}

	if len(res.Hits) == 0 {
		return nil, false, nil
	}

	return res.Hits[0].Source["new_value"], true, nil
}

func (c *Converter) convertMultiple(ctx context.Context, raw, valType string) (any, error) {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode multiple value payload: %w", err)
	}

	converted := make([]any, 0, len(items))
	for _, item := range items {
		value, err := c.convertSingle(ctx, fmt.Sprint(item), valType)
		if err != nil {
			return nil, err
		}
		converted = append(converted, value)
	}

	return converted, nil
}

func (c *Converter) convertSingle(ctx context.Context, raw, valType string) (any, error) {
	switch valType {
	case "int", "two-way link":
		if strings.Contains(raw, ".") {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %q as int: %w", raw, err)
			}
			return int64(f), nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as int: %w", raw, err)
		}
		return n, nil

	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as float: %w", raw, err)
		}
		return f, nil

	case "bool":
		switch strings.ToLower(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("failed to parse %q as bool", raw)
		}

	case "mo_link":
		return c.resolveLink(ctx, raw, domain.IndexObject, "name")

	case "prm_link":
		return c.resolveLink(ctx, raw, domain.IndexParameter, "value")

	default:
		return raw, nil
	}
}

// resolveLink replaces a foreign identifier with the referenced entity's
// currently active display value.
func (c *Converter) resolveLink(ctx context.Context, raw, index, attribute string) (any, error) {
	linkedID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse link id %q: %w", raw, err)
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"instance_id": linkedID}},
					map[string]any{"term": map[string]any{"attribute": attribute}},
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
	}

	res, err := c.store.Search(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve link %d: %w", linkedID, err)
	}

	if len(res.Hits) == 0 {
		return nil, fmt.Errorf("%w: id %d in %s", ErrLinkNotFound, linkedID, index)
	}

	return res.Hits[0].Source["new_value"], nil
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lowered := strings.ToLower(val)
		return lowered != "" && lowered != "false" && lowered != "0"
	case float64:
		return val != 0
	case int64:
		return val != 0
	default:
		return false
	}
}
