package handler

import "github.com/clientes/backend/internal/interfaces/http/dto"

// APIResponse is dto.Response with a typed data field, used in godoc
// annotations and for decoding responses in clients
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the envelope of every failed request
// @Description Error envelope with code, message and request id
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
