package helper

import (
	"net/http"

	. "kubetodo/internal/adapter/http/validation"
	"kubetodo/internal/core/model/response"
	"kubetodo/pkg/tracing"

	"github.com/gin-gonic/gin"
)

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

// SendInternalError attaches the trace id when the request carries one, so
// a 500 seen by a client can be matched to its trace.
func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	if len(details) == 0 {
		if traceID := tracing.GetTraceID(c.Request.Context()); traceID != "" {
			details = []any{gin.H{"trace_id": traceID}}
		}
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

// SendNotFoundAsBadRequest reports an unresolvable identifier. The wire
// contract uses 400 for this case, not 404.
func SendNotFoundAsBadRequest(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "id",
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "NOT_FOUND", errors)
}
