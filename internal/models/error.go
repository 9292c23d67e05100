package models

import (
	"errors"
	"net/http"
)

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// APIError implementa la interfaz error para uso en servicios y API
type APIError struct {
	ErrorResponse
}

// Error implementa la interfaz error
func (e *APIError) Error() string {
	return e.ErrorResponse.Error.Message
}

// Code retorna el código del error
func (e *APIError) Code() ErrorCode {
	return ErrorCode(e.ErrorResponse.Error.Code)
}

// HTTPStatus traduce el código de error a un status HTTP
func (e *APIError) HTTPStatus() int {
	switch e.Code() {
	case ErrorCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError crea un nuevo error de API
func NewAPIError(errResp ErrorResponse) error {
	return &APIError{ErrorResponse: errResp}
}

// AsAPIError extrae un APIError de la cadena de errores
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewConflictError crea un error de conflicto de clave natural
func NewConflictError(message string, details ...ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeConflict),
			Message: message,
			Details: details,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeNotFound),
			Message: message,
		},
	}
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInternal),
			Message: message,
		},
	}
}

// ValidationFailed es un atajo para un APIError de validación sobre un campo
func ValidationFailed(field, issue, message string) error {
	return NewAPIError(NewValidationError(message, []ErrorDetail{{Field: field, Issue: issue}}))
}

// ConflictOn es un atajo para un APIError de conflicto sobre un campo
func ConflictOn(field, message string) error {
	return NewAPIError(NewConflictError(message, ErrorDetail{Field: field, Issue: "already exists"}))
}

// NotFound es un atajo para un APIError de recurso no encontrado
func NotFound(message string) error {
	return NewAPIError(NewNotFoundError(message))
}
