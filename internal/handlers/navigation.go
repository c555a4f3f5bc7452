package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpress/api/internal/guard"
)

// NavigationHome tells a signed-in client which dashboard its role lands on.
// The answer comes from the same guard table the role middleware consults, so
// a 403 redirect and this endpoint can never disagree.
func (h HandlerSet) NavigationHome(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	eval := guard.Evaluate(guard.Session{
		UserID:        user.ID,
		Role:          user.Role,
		Authenticated: true,
	})

	c.JSON(http.StatusOK, gin.H{
		"role": string(eval.Role),
		"home": guard.HomeRoute(eval.Role),
	})
}
