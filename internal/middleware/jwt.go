package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kaensy/mathed-romania/internal/service"
	appErrors "github.com/Kaensy/mathed-romania/pkg/errors"
	"github.com/Kaensy/mathed-romania/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// AccessTokenCookie is the httpOnly cookie carrying the access token.
const AccessTokenCookie = "access_token"

// JWT protects routes by requiring a valid access token. Browser clients
// send it in the httpOnly cookie; an Authorization Bearer header works as
// a fallback for non-browser callers.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Authentication credentials were not provided."))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
