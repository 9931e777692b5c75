package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/romitgit/tc-project-service/internal/utils/errors"
)

// Error sends an AppError as the JSON error body.
func Error(c *gin.Context, err *apperrors.AppError) {
	c.JSON(err.StatusCode, err.ToResponse())
}

// AbortWithError sends an AppError and stops the handler chain.
func AbortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err.ToResponse())
}

// ErrorMapping maps domain errors to HTTP status codes.
// An empty Message echoes the full error text, which keeps context
// added by wrapping (e.g. the rejected role).
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// HandleError handles an error using the provided mappings.
// Returns true if the error was handled, false otherwise.
func HandleError(c *gin.Context, err error, mappings []ErrorMapping) bool {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			code := m.Code
			if code == "" {
				code = http.StatusText(m.Status)
			}
			Error(c, apperrors.New(code, msg, m.Status, err))
			return true
		}
	}
	return false
}

// HandleErrorWithDefault handles an error with a default fallback.
func HandleErrorWithDefault(c *gin.Context, err error, mappings []ErrorMapping) {
	if !HandleError(c, err, mappings) {
		Error(c, apperrors.Internal("", err))
	}
}
