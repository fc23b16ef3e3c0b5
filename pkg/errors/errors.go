package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies failures coming back from the VK and Disk APIs
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Service string
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s %s error (code %d): %s", e.Service, e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New builds an Error for the given service
func New(service string, errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Service: service,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// FromStatus maps a non-2xx HTTP status code to an Error. It returns nil for 2xx.
func FromStatus(service string, statusCode int) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var errorType ErrorType
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errorType = ErrorTypeAuth
	case http.StatusNotFound:
		errorType = ErrorTypeNotFound
	case http.StatusConflict:
		errorType = ErrorTypeConflict
	case http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimit
	default:
		if statusCode >= 500 {
			errorType = ErrorTypeServerError
		} else {
			errorType = ErrorTypeUnknown
		}
	}

	return &Error{
		Type:    errorType,
		Service: service,
		Message: fmt.Sprintf("unexpected status %d %s", statusCode, http.StatusText(statusCode)),
		Code:    statusCode,
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}
