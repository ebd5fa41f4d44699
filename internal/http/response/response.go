package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/platform/apierr"
)

type APIError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondFailure maps apierr and aggregate errors onto the envelope.
// Anything else is reported as an opaque 500.
func RespondFailure(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorEnvelope{Error: APIError{
			Message: apiErr.Error(),
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}})
		return
	}

	code := domainagg.CodeOf(err)
	if code == "" || code == domainagg.CodeInternal {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: APIError{
			Message: "internal error",
			Code:    string(domainagg.CodeInternal),
		}})
		return
	}
	msg := domainagg.MessageOf(err)
	if msg == "" {
		msg = err.Error()
	}
	c.JSON(StatusForCode(code), ErrorEnvelope{Error: APIError{
		Message: msg,
		Code:    string(code),
		Details: domainagg.DetailsOf(err),
	}})
}

func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeValidation, domainagg.CodeInvariantViolation:
		return http.StatusBadRequest
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
