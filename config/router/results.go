package router

import (
	"net/http"

	"github.com/akeren/go-registration-form/internal/log"
	apperrors "github.com/akeren/go-registration-form/pkg/errors"
	"github.com/google/uuid"
)

func GetLogger(ctx *RequestContext) *log.Logger {
	return log.GetLoggerInstanceFromContext(ctx.Request.Context(), nil)
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{StatusCode: http.StatusOK, Data: data, Message: message}
}

func CreatedResult(data any, resourceName string) *ServiceResult {
	return &ServiceResult{StatusCode: http.StatusCreated, Data: data, Message: resourceName + " created successfully"}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{StatusCode: http.StatusTooManyRequests, Data: data, Message: "Too Many Requests"}
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return &ServiceResult{StatusCode: http.StatusBadRequest, Data: payload, Message: message}
}

func NotFoundResult(message string) *ServiceResult {
	return &ServiceResult{StatusCode: http.StatusNotFound, Message: message}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return &ServiceResult{StatusCode: http.StatusInternalServerError, Message: message}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Data: data, Message: message}
}

// FromError maps an application error onto its HTTP result.
func FromError(err error) *ServiceResult {
	return ErrorResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil)
}

// BindJSON binds the request body into req and returns a 400 result describing
// the offending fields when binding fails.
func BindJSON(ctx *RequestContext, req any) *ServiceResult {
	if err := ctx.ShouldBindJSON(req); err != nil {
		GetLogger(ctx).Error("Failed to bind request", "error", err)

		if validationErrors := apperrors.FormatValidationErrors(err, req); len(validationErrors) > 0 {
			return BadRequestResult("Invalid request payload", validationErrors)
		}
		return BadRequestResult("Invalid request body", nil)
	}
	return nil
}

func ParseUUIDParam(ctx *RequestContext, paramName string) (string, *ServiceResult) {
	raw := ctx.Param(paramName)

	id, err := uuid.Parse(raw)
	if err != nil {
		GetLogger(ctx).Warn("Invalid UUID parameter", "param", paramName, "value", raw, "error", err)
		return "", BadRequestResult("Invalid "+paramName+" parameter", nil)
	}

	return id.String(), nil
}
