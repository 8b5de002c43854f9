// Package http provides the JSON API server and its handlers.
//
// This file implements the builder used for every JSON response, and the
// mapping from domain errors to status codes and error bodies.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/raiyan37/Centinel/internal/core"
)

// ErrorCode is the machine-readable kind carried in error bodies.
type ErrorCode string

const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeNotFound               ErrorCode = "not_found"
	CodeValidation             ErrorCode = "validation_error"
	CodeInvalidAmount          ErrorCode = "invalid_amount"
	CodeInsufficientBalance    ErrorCode = "insufficient_balance"
	CodeInsufficientPotBalance ErrorCode = "insufficient_pot_balance"
	CodeDuplicate              ErrorCode = "duplicate_category_or_theme"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeInternal               ErrorCode = "internal"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal","message":"internal server error"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code ErrorCode, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationErrorResponse creates a 422 response listing every rejected field.
func ValidationErrorResponse(details []FieldError) *JSONResponseBuilder {
	message := "invalid request data"
	if len(details) > 0 {
		message = details[0].Field + ": " + details[0].Message
	}
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Body(ErrorBody{Error: ErrorDetail{Code: CodeValidation, Message: message, Details: details}})
}

// InternalServerError creates a 500 response that reveals nothing about the cause.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal server error")
}

// classifyError maps a service error to its status and code. ok is false for
// errors outside the business taxonomy.
func classifyError(err error) (status int, code ErrorCode, ok bool) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, true
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, true
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, CodeInvalidAmount, true
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, CodeValidation, true
	case errors.Is(err, core.ErrInsufficientBalance):
		return http.StatusConflict, CodeInsufficientBalance, true
	case errors.Is(err, core.ErrInsufficientPotBalance):
		return http.StatusConflict, CodeInsufficientPotBalance, true
	case errors.Is(err, core.ErrDuplicateCategoryOrTheme):
		return http.StatusConflict, CodeDuplicate, true
	}
	return http.StatusInternalServerError, CodeInternal, false
}

// ErrorFromDomain builds the response for a service error.
func ErrorFromDomain(err error) *JSONResponseBuilder {
	status, code, ok := classifyError(err)
	if !ok {
		return InternalServerError()
	}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return NewJSONResponse().
			Status(status).
			Body(ErrorBody{Error: ErrorDetail{
				Code:    code,
				Message: err.Error(),
				Details: []FieldError{{Field: verr.Field, Message: verr.Message}},
			}})
	}
	return ErrorResponse(status, code, err.Error())
}
