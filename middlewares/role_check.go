package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinehub/restaurant-backend/utils"
)

// RequireRoles aborts unless the authenticated user has one of the given
// roles. Admin passes every check.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		if role == "admin" {
			c.Next()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", roles[0]))
		c.Abort()
	}
}
