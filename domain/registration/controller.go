package registration

import (
	"time"

	"github.com/akeren/go-registration-form/config/router"
	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/constants"
	"github.com/akeren/go-registration-form/pkg/factory"
)

const submitRequestsPerMinute = 30

func NewRegistrationController(
	store kvstore.Store,
	logger *log.Logger,
	limiters factory.RateLimiterFactory,
	options *Options,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"RegistrationController",
		"v1",
		"/registration",
		func(rs *router.RouterService, c *router.RESTController) {
			repository := NewRecordRepository(store, constants.RegistrationRecordKey)
			service := NewRegistrationService(logger, repository, options, NewMetrics(rs.MetricsRegisterer()))

			submitLimiter := limiters.CreateRateLimiter("registration-submit", submitRequestsPerMinute, time.Minute)

			rs.AddPostHandler(c, nil, "forms", createFormHandler(service))
			rs.AddGetHandler(c, nil, "forms/:id", getFormHandler(service))
			rs.AddPatchHandler(c, nil, "forms/:id/fields", changeFieldHandler(service))
			rs.AddPostHandler(c, submitLimiter, "forms/:id/submit", submitFormHandler(service))
			rs.AddDeleteHandler(c, nil, "forms/:id", discardFormHandler(service))
			rs.AddPostHandler(c, submitLimiter, "", registerHandler(service))
			rs.AddGetHandler(c, nil, "record", getRecordHandler(service))
		},
	)
}

func createFormHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.CreateForm(ctx.Request.Context())
		if err != nil {
			return router.FromError(err)
		}

		return router.CreatedResult(response, "Registration form")
	}
}

func getFormHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.GetForm(ctx.Request.Context(), id)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Registration form retrieved successfully")
	}
}

func changeFieldHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req ChangeFieldRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.ChangeField(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Registration field updated")
	}
}

func submitFormHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.SubmitForm(ctx.Request.Context(), id)
		if err != nil {
			return router.FromError(err)
		}

		return submissionResult(response)
	}
}

func discardFormHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		if err := service.DiscardForm(ctx.Request.Context(), id); err != nil {
			return router.FromError(err)
		}

		return router.OKResult(nil, "Registration form discarded")
	}
}

func registerHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req RegisterRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Register(ctx.Request.Context(), &req)
		if err != nil {
			return router.FromError(err)
		}

		return submissionResult(response)
	}
}

func getRecordHandler(service RegistrationService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		record, err := service.GetRecord(ctx.Request.Context())
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(record, "Registration record retrieved successfully")
	}
}

// A rejected form is a client error carrying the form view so callers can show field messages.
func submissionResult(response *FormResponse) *router.ServiceResult {
	if response.Rejected() {
		return router.BadRequestResult(response.Notification.Message, response)
	}
	return router.OKResult(response, response.Notification.Message)
}
