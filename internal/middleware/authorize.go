package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpress/api/internal/guard"
	"inkpress/api/internal/models"
)

// RequireRoles gates a route group on the marketplace roles. The decision is
// delegated to the guard so the redirect target in a 403 matches what the
// navigation endpoint would tell the same user.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
			return
		}

		eval := guard.Evaluate(guard.Session{
			UserID:        user.ID,
			Role:          user.Role,
			Authenticated: true,
		}, roles...)

		switch eval.Decision {
		case guard.DecisionAllow:
			c.Set("current_role", eval.Role)
			c.Next()
		case guard.DecisionRedirect:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "forbidden",
				"redirect": eval.Target,
			})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
	}
}
