package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body of the patient API.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  []string    `json:"errors"`
	Data    interface{} `json:"data"`
}

// Respond writes env with the given status, normalising a nil error list to
// an empty JSON array.
func Respond(c *gin.Context, status int, env Envelope) {
	if env.Errors == nil {
		env.Errors = []string{}
	}
	c.JSON(status, env)
}

// RespondWithError sends a failure envelope
func RespondWithError(c *gin.Context, status int, message string, errs ...string) {
	Respond(c, status, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// AbortWithError sends a failure envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// RespondInternal sends the generic internal-error envelope. No detail of the
// underlying failure is ever included.
func RespondInternal(c *gin.Context) {
	AbortWithError(c, http.StatusInternalServerError, "internal server error", "an unexpected error occurred")
}
