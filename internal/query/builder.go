package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avataa-hq/avataa-events/internal/domain"
)

// Condition groups a filter clause: AND clauses are required, OR clauses are
// gathered into a should-group needing at least one match.
type Condition string

const (
	ConditionAnd Condition = "AND"
	ConditionOr  Condition = "OR"
)

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// AllowedColumns is the fixed allow-list of filterable and sortable fields.
var AllowedColumns = map[string]struct{}{
	"event_type":  {},
	"instance":    {},
	"old_value":   {},
	"new_value":   {},
	"instance_id": {},
	"attribute":   {},
	"valid_from":  {},
	"valid_to":    {},
	"is_active":   {},
	"user_id":     {},
	"session_id":  {},
}

// ErrInvalidColumn rejects a filter or sort field outside the allow-list.
var ErrInvalidColumn = errors.New("column is not in the available list of attributes")

// ValidateColumn checks a field against the allow-list.
func ValidateColumn(field string) error {
	if _, ok := AllowedColumns[field]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, field)
	}
	return nil
}

// Filter is one exact-match clause of a structured filter request.
type Filter struct {
	Field     string
	Value     any
	Condition Condition
}

// Sort appends exactly one sort key.
type Sort struct {
	Field string
	Order Order
}

// EventsRequest is the structured input for the event query builder.
type EventsRequest struct {
	Filters  []Filter
	Sort     Sort
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// BuildEventsQuery turns a structured request into the store's native query
// body and the index it must run against. A filter on the pseudo-field
// "instance" selects the physical index instead of becoming a value clause;
// without one the union of all kinds' indexes is queried.
func BuildEventsQuery(req EventsRequest) (map[string]any, string, error) {
	for _, filter := range req.Filters {
		if err := ValidateColumn(filter.Field); err != nil {
			return nil, "", err
		}
	}
	if err := ValidateColumn(req.Sort.Field); err != nil {
		return nil, "", err
	}

	boolQuery := map[string]any{
		"must":   []any{},
		"filter": []any{},
	}
	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort":  []any{},
		"from":  req.Offset,
		"size":  req.Limit,
	}

	addDateRange(boolQuery, req.DateFrom, req.DateTo)

	index := domain.IndexAll
	for _, filter := range req.Filters {
		if filter.Field == "instance" {
			index = domain.IndexForInstanceTag(fmt.Sprint(filter.Value))
			continue
		}

		termQuery := map[string]any{
			"term": map[string]any{
				filter.Field: map[string]any{"value": filter.Value},
			},
		}

		if filter.Condition == ConditionOr {
			should, ok := boolQuery["should"].([]any)
			if !ok {
				should = []any{}
				boolQuery["minimum_should_match"] = 1
			}
			boolQuery["should"] = append(should, termQuery)
		} else {
			boolQuery["must"] = append(boolQuery["must"].([]any), termQuery)
		}
	}

	body["sort"] = append(body["sort"].([]any), map[string]any{
		req.Sort.Field: map[string]any{"order": strings.ToLower(string(req.Sort.Order))},
	})

	return body, index, nil
}

// addDateRange appends an inclusive range clause on valid_from when either
// bound is given.
func addDateRange(boolQuery map[string]any, from, to *time.Time) {
	if from == nil && to == nil {
		return
	}

	dateRange := map[string]any{}
	if from != nil {
		dateRange["gte"] = from.Format(time.RFC3339)
	}
	if to != nil {
		dateRange["lte"] = to.Format(time.RFC3339)
	}

	boolQuery["filter"] = append(boolQuery["filter"].([]any), map[string]any{
		"range": map[string]any{"valid_from": dateRange},
	})
}

// BuildParameterIDsQuery finds parameter entities linked to the given
// external object ids through their active mo_id events.
func BuildParameterIDsQuery(objectIDs []int64) map[string]any {
	ids := make([]any, 0, len(objectIDs))
	for _, id := range objectIDs {
		ids = append(ids, id)
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"terms": map[string]any{"new_value_str": ids}},
					map[string]any{"term": map[string]any{"attribute": "mo_id"}},
				},
			},
		},
		"_source": []any{"instance_id", "new_value"},
	}
}

// ParameterValuesRequest pages a matched parameter set's value history.
type ParameterValuesRequest struct {
	ParameterIDs []int64
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
	Order        Order
}

// BuildParameterValuesQuery fetches the value events of the matched
// parameters with date range, sort and pagination.
func BuildParameterValuesQuery(req ParameterValuesRequest) map[string]any {
	ids := make([]any, 0, len(req.ParameterIDs))
	for _, id := range req.ParameterIDs {
		ids = append(ids, id)
	}

	boolQuery := map[string]any{
		"filter": []any{
			map[string]any{"terms": map[string]any{"instance_id": ids}},
			map[string]any{"term": map[string]any{"attribute": "value"}},
		},
	}
	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort": []any{
			map[string]any{"valid_from": map[string]any{"order": strings.ToLower(string(req.Order))}},
		},
		"from": req.Offset,
		"size": req.Limit,
	}

	addDateRange(boolQuery, req.DateFrom, req.DateTo)

	return body
}

// BuildParameterTypesQuery fetches the tprm_id events used to attach a
// parameter_type_id to each matched parameter.
func BuildParameterTypesQuery(parameterIDs []int64) map[string]any {
	ids := make([]any, 0, len(parameterIDs))
	for _, id := range parameterIDs {
		ids = append(ids, id)
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"terms": map[string]any{"instance_id": ids}},
					map[string]any{"term": map[string]any{"attribute": "tprm_id"}},
				},
			},
		},
		"_source": []any{"instance_id", "new_value"},
	}
}
