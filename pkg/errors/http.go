package errors

import (
	"errors"
	"net/http"
)

var statusByType = map[string]int{
	ErrorTypeNotFound:            http.StatusNotFound,
	ErrorTypeInvalidRequest:      http.StatusBadRequest,
	ErrorTypeValidationFailed:    http.StatusBadRequest,
	ErrorTypeConflict:            http.StatusConflict,
	ErrorTypeTooManyRequests:     http.StatusTooManyRequests,
	ErrorTypeRequestTimeout:      http.StatusRequestTimeout,
	ErrorTypeServiceUnavailable:  http.StatusServiceUnavailable,
	ErrorTypeDatabaseError:       http.StatusInternalServerError,
	ErrorTypeInternalServerError: http.StatusInternalServerError,
}

func HTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}

	return http.StatusInternalServerError
}

func GetHumanReadableMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	// SECURITY: avoid leaking internal error strings (DB errors, stack messages, etc.)
	return "An unexpected error occurred"
}
