package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
			Code:    code,
			Message: msg,
		},
	})
}

// RespondErr maps a service error to the envelope: apierr carries its
// own status and code, anything else is an internal error. The
// underlying cause is logged before a masked 5xx leaves the handler, so
// a store or upstream failure stays diagnosable.
func RespondErr(c *gin.Context, log *logger.Logger, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= 500 && log != nil {
			log.Error("Request failed",
				"path", c.Request.URL.Path,
				"code", apiErr.Code,
				"error", apiErr,
			)
		}
		RespondError(c, status, apiErr.Code, apiErr)
		return
	}
	if log != nil {
		log.Error("Unhandled error",
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors.New("An internal error occurred"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
