package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"bad_field is not in the available list of attributes"`
}

// GetEventsResponse represents a filtered event query response. Rows are
// event documents with the instance kind label attached.
type GetEventsResponse struct {
	Data  []map[string]any `json:"data"`
	Total int64            `json:"total" example:"42"`
}

// ParameterHistoryGroup collects one object's parameter history rows
type ParameterHistoryGroup struct {
	Data  []map[string]any `json:"data"`
	Total int              `json:"total" example:"3"`
}

// GetParameterHistoryResponse maps each requested object id to its rows
type GetParameterHistoryResponse map[int64]ParameterHistoryGroup
