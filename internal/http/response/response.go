package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/awareness-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, ErrorEnvelope{Error: apiError(status, code, err)})
}

// RespondAPIError renders err, honoring the status, code and details of an *apierr.Error.
// Details are merged into the top level of the body next to "error".
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		RespondError(c, http.StatusInternalServerError, fallbackCode, err)
		return
	}
	status := apierr.StatusOf(ae)
	code := ae.Code
	if code == "" {
		code = fallbackCode
	}
	if len(ae.Details) == 0 {
		RespondError(c, status, code, ae.Err)
		return
	}
	body := gin.H{}
	for k, v := range ae.Details {
		body[k] = v
	}
	body["error"] = apiError(status, code, ae.Err)
	c.JSON(status, body)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func apiError(status int, code string, err error) APIError {
	msg := http.StatusText(status)
	// Server-side failures keep their cause in the logs, not the body.
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	return APIError{Message: msg, Code: code}
}
