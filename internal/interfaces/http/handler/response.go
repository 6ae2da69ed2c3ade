package handler

import "github.com/erp/crm/internal/interfaces/http/dto"

// Swagger shapes of the dto.Response envelope.

// APIResponse is a successful response carrying T
// @Description Success envelope with typed data
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ListResponse is a successful response carrying a list and its count
// @Description Success envelope for lists; meta.total is the item count
type ListResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is the failure envelope. Codes are the ERR_* constants of package dto.
// @Description Error envelope; error.request_id echoes the X-Request-ID header
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
