package dto

import "time"

// APIResponse is the uniform envelope returned by every endpoint.
type APIResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       interface{}     `json:"data"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo describes one page of a list result
type PaginationInfo struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// NewSuccessResponse creates a success envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewPaginatedResponse creates a success envelope with a pagination block
func NewPaginatedResponse(data interface{}, message string, pagination PaginationInfo) APIResponse {
	return APIResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now(),
		Pagination: &pagination,
	}
}
