package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/domain"
	"github.com/avataa-hq/avataa-events/internal/dto"
	"github.com/avataa-hq/avataa-events/internal/identity"
	"github.com/avataa-hq/avataa-events/internal/query"
	"github.com/avataa-hq/avataa-events/internal/repository"
)

const defaultPageLimit = 10

// EventService answers event-trail queries against the store
type EventService struct {
	store    repository.EventStore
	resolver identity.Resolver
	log      *zap.Logger
}

// NewEventService creates a new event query service
func NewEventService(store repository.EventStore, resolver identity.Resolver, log *zap.Logger) *EventService {
	return &EventService{
		store:    store,
		resolver: resolver,
		log:      log,
	}
}

// GetEventsByFilter runs a structured filter request and shapes the rows:
// the instance kind label is attached from the index each hit came from and
// actor ids are swapped for usernames when resolution is configured.
func (s *EventService) GetEventsByFilter(ctx context.Context, req *dto.GetEventsRequest, token string) (*dto.GetEventsResponse, error) {
	builderReq := query.EventsRequest{
		Sort:     query.Sort{Field: "valid_from", Order: query.OrderDesc},
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if builderReq.Limit == 0 {
		builderReq.Limit = defaultPageLimit
	}
	if req.SortBy != nil {
		builderReq.Sort = query.Sort{Field: req.SortBy.Field, Order: query.OrderDesc}
		if req.SortBy.Descending == string(query.OrderAsc) {
			builderReq.Sort.Order = query.OrderAsc
		}
	}
	for _, filter := range req.FilterColumn {
		condition := query.Condition(filter.Condition)
		if condition != query.ConditionOr {
			condition = query.ConditionAnd
		}
		builderReq.Filters = append(builderReq.Filters, query.Filter{
			Field:     filter.Field,
			Value:     filter.Value,
			Condition: condition,
		})
	}

	body, index, err := query.BuildEventsQuery(builderReq)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Search(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	usernames := s.resolveUsernames(ctx, token)

	rows := make([]map[string]any, 0, len(res.Hits))
	for _, hit := range res.Hits {
		row := hit.Source

		if instance, ok := domain.InstanceForIndex(hit.Index); ok {
			row["instance"] = string(instance)
		} else {
			row["instance"] = nil
		}

		if usernames != nil {
			if userID, ok := row["user_id"].(string); ok {
				if username, found := usernames[userID]; found {
					row["user_id"] = username
				} else {
					row["user_id"] = nil
				}
			}
		}

		rows = append(rows, row)
	}

	return &dto.GetEventsResponse{Data: rows, Total: res.Total}, nil
}

// GetParameterHistoryByObjectIDs reconstructs which object owns which
// parameter value history: mo_id events map parameters to objects, value
// events form the result rows, tprm_id events attach a parameter_type_id,
// and rows are grouped by the originating object.
func (s *EventService) GetParameterHistoryByObjectIDs(ctx context.Context, req *dto.GetParameterHistoryRequest, token string) (dto.GetParameterHistoryResponse, error) {
	linkRes, err := s.store.Search(ctx, domain.IndexParameter, query.BuildParameterIDsQuery(req.ObjectIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to find parameters for objects: %w", err)
	}

	parameterIDs := make([]int64, 0, len(linkRes.Hits))
	objectIDByParameterID := make(map[int64]int64, len(linkRes.Hits))
	for _, hit := range linkRes.Hits {
		parameterID, ok := asInt64(hit.Source["instance_id"])
		if !ok {
			continue
		}
		objectID, ok := asInt64(hit.Source["new_value"])
		if !ok {
			continue
		}

		parameterIDs = append(parameterIDs, parameterID)
		objectIDByParameterID[parameterID] = objectID
	}

	if len(parameterIDs) == 0 {
		return dto.GetParameterHistoryResponse{}, nil
	}

	valuesReq := query.ParameterValuesRequest{
		ParameterIDs: parameterIDs,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
		Limit:        req.Limit,
		Offset:       req.Offset,
		Order:        query.OrderDesc,
	}
	if valuesReq.Limit == 0 {
		valuesReq.Limit = defaultPageLimit
	}
	if req.SortByDatetime == string(query.OrderAsc) {
		valuesReq.Order = query.OrderAsc
	}

	valuesRes, err := s.store.Search(ctx, domain.IndexParameter, query.BuildParameterValuesQuery(valuesReq))
	if err != nil {
		return nil, fmt.Errorf("failed to query parameter values: %w", err)
	}

	typesRes, err := s.store.Search(ctx, domain.IndexParameter, query.BuildParameterTypesQuery(parameterIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query parameter types: %w", err)
	}

	typeByParameterID := make(map[int64]int64, len(typesRes.Hits))
	for _, hit := range typesRes.Hits {
		parameterID, ok := asInt64(hit.Source["instance_id"])
		if !ok {
			continue
		}
		if typeID, ok := asInt64(hit.Source["new_value"]); ok {
			typeByParameterID[parameterID] = typeID
		}
	}

	response := dto.GetParameterHistoryResponse{}
	for _, hit := range valuesRes.Hits {
		row := hit.Source

		parameterID, ok := asInt64(row["instance_id"])
		if !ok {
			continue
		}
		objectID, ok := objectIDByParameterID[parameterID]
		if !ok {
			continue
		}

		row["instance"] = string(domain.InstanceParameter)
		if typeID, found := typeByParameterID[parameterID]; found {
			row["parameter_type_id"] = typeID
		} else {
			row["parameter_type_id"] = nil
		}

		group := response[objectID]
		group.Data = append(group.Data, row)
		group.Total = len(group.Data)
		response[objectID] = group
	}

	return response, nil
}

// resolveUsernames is best-effort: resolution failures leave ids as-is.
func (s *EventService) resolveUsernames(ctx context.Context, token string) map[string]string {
	usernames, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		s.log.Warn("Failed to resolve usernames, leaving user ids untouched", zap.Error(err))
		return nil
	}
	return usernames
}

func asInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case int64:
		return value, true
	case float64:
		return int64(value), true
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
