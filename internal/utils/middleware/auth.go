package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/shared/response"
	apperrors "github.com/romitgit/tc-project-service/internal/utils/errors"
	"github.com/romitgit/tc-project-service/internal/utils/requestctx"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// CallerKey is the context key for the authenticated caller.
	CallerKey = "caller"
)

// TokenValidator validates bearer tokens and resolves the caller.
type TokenValidator interface {
	ValidateToken(token string) (*model.Caller, error)
}

// RequireAuth returns a middleware that requires a valid bearer token.
// The resolved caller is stored in the gin context and the request context.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			response.AbortWithError(c, apperrors.Unauthorized("Authorization header required"))
			return
		}

		caller, err := validator.ValidateToken(token)
		if err != nil {
			response.AbortWithError(c, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(CallerKey, caller)
		c.Request = c.Request.WithContext(requestctx.WithCaller(c.Request.Context(), caller))

		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if len(authHeader) <= len(BearerPrefix) {
		return ""
	}
	if !strings.EqualFold(authHeader[:len(BearerPrefix)], BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(BearerPrefix):])
}

// GetCaller returns the authenticated caller, or nil.
func GetCaller(c *gin.Context) *model.Caller {
	if val, exists := c.Get(CallerKey); exists {
		if caller, ok := val.(*model.Caller); ok {
			return caller
		}
	}
	return nil
}
