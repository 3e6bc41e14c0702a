package service

import (
	"context"

	"github.com/avataa-hq/avataa-events/internal/dto"
)

// EventServicer defines the interface for event query operations
type EventServicer interface {
	GetEventsByFilter(ctx context.Context, req *dto.GetEventsRequest, token string) (*dto.GetEventsResponse, error)
	GetParameterHistoryByObjectIDs(ctx context.Context, req *dto.GetParameterHistoryRequest, token string) (dto.GetParameterHistoryResponse, error)
}
