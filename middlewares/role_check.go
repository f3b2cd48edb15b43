package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// RequireRoles lets the request through only for the listed roles. It must
// run after SessionAuth.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed = append(allowed, string(r))
	}
	message := "requires role " + strings.Join(allowed, " or ")

	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			utils.RespondAppError(c, utils.ErrUnauthenticated())
			c.Abort()
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondAppError(c, utils.ErrForbidden(message))
		c.Abort()
	}
}

// StaffOnly is RequireRoles(admin, hr).
func StaffOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleHR)
}
