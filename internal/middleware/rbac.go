package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Kaensy/mathed-romania/internal/models"
	appErrors "github.com/Kaensy/mathed-romania/pkg/errors"
	"github.com/Kaensy/mathed-romania/pkg/response"
)

// RequireAccountTypes gates a route behind an account-type allow-list.
// An empty list means any authenticated user.
func RequireAccountTypes(allowed ...models.AccountType) gin.HandlerFunc {
	allowedTypes := make(map[models.AccountType]struct{}, len(allowed))
	for _, a := range allowed {
		allowedTypes[a] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if len(allowedTypes) > 0 {
			if _, ok := allowedTypes[claims.AccountType]; !ok {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to perform this action."))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
