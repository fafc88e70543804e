package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laxmielectronics/site-api/internal/models"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends a {success:false, message} response and attaches the
// error to the gin context for the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, models.SubmissionResult{Success: false, Message: message})
}

// respondErrorWithDetails also exposes the error text to the caller.
func respondErrorWithDetails(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	body := models.SubmissionResult{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(status, body)
}

// RecoveryHandler turns a panic on the API routes into the standard 500 body.
// Use with gin.CustomRecovery.
func RecoveryHandler(c *gin.Context, recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = panicError{value: recovered}
	}
	respondErrorWithDetails(c, http.StatusInternalServerError, models.MessageInternalError, err)
	c.Abort()
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return "panic: " + stringify(p.value)
}
