package dto

import "time"

// FilterColumn is one exact-match filter clause
type FilterColumn struct {
	Field     string `json:"field" binding:"required" example:"attribute"`
	Value     any    `json:"value" swaggertype:"string" example:"name"`
	Condition string `json:"condition" binding:"omitempty,oneof=AND OR" example:"AND"`
}

// SortBy selects the single sort key of a query
type SortBy struct {
	Field      string `json:"field" binding:"required" example:"valid_from"`
	Descending string `json:"descending" binding:"omitempty,oneof=ASC DESC" example:"DESC"`
}

// GetEventsRequest represents a filtered event query request
type GetEventsRequest struct {
	FilterColumn []FilterColumn `json:"filter_column"`
	SortBy       *SortBy        `json:"sort_by"`
	DateFrom     *time.Time     `json:"date_from" example:"2024-01-01T00:00:00Z"`
	DateTo       *time.Time     `json:"date_to" example:"2024-12-31T23:59:59Z"`
	Limit        int            `json:"limit" example:"10"`
	Offset       int            `json:"offset" example:"0"`
}

// GetParameterHistoryRequest represents a parameter-history-by-object query
type GetParameterHistoryRequest struct {
	ObjectIDs      []int64    `json:"object_ids" binding:"required,min=1"`
	DateFrom       *time.Time `json:"date_from"`
	DateTo         *time.Time `json:"date_to"`
	Limit          int        `json:"limit" example:"10"`
	Offset         int        `json:"offset" example:"0"`
	SortByDatetime string     `json:"sort_by_datetime" binding:"omitempty,oneof=ASC DESC" example:"DESC"`
}
