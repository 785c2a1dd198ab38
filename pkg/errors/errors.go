package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeCardError  = "CARD_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeEncoding   = "ENCODING_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

type CardError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *CardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CardError) Unwrap() error {
	return e.Cause
}

func NewCardError(message, code string, statusCode int, context map[string]any) *CardError {
	return &CardError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *CardError) WithCause(cause error) *CardError {
	e.Cause = cause
	return e
}

type ValidationError struct {
	*CardError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*CardError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*CardError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// EncodingError reports content that does not fit in a QR symbol at the
// requested error-correction level.
type EncodingError struct {
	*CardError
	Level  string
	Length int
}

func NewEncodingError(message, level string, length int, cause error) *EncodingError {
	return &EncodingError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeEncoding,
			StatusCode: 422,
			Context: map[string]any{
				"level":  level,
				"length": length,
			},
			Cause: cause,
		},
		Level:  level,
		Length: length,
	}
}

// HTTPStatus exposes the status code for handlers.
func (e *CardError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return 500
	}
	return e.StatusCode
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not a CardError.
func StatusOf(err error) int {
	var coder interface{ HTTPStatus() int }
	if stderrors.As(err, &coder) {
		return coder.HTTPStatus()
	}
	return 500
}

// CodeOf returns the error code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var coded interface{ ErrorCode() string }
	if stderrors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeInternal
}

func (e *CardError) ErrorCode() string {
	return e.Code
}
