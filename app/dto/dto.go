// Package dto contains Data Transfer Objects for API request and response structures
package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// FieldViolation is one failed rule of a submitted form
type FieldViolation struct {
	Field   string `json:"field" example:"phone"`
	Rule    string `json:"rule" example:"pl_phone"`
	Message string `json:"message" example:"Nieprawidłowy format numeru telefonu"`
}

// OffsetPagination describes a limit/offset page
type OffsetPagination struct {
	Total  int64 `json:"total" example:"42"`
	Limit  int   `json:"limit" example:"100"`
	Offset int   `json:"offset" example:"0"`
}
