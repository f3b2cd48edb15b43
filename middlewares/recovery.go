package middlewares

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// Recovery turns a handler panic into an internal error response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.RespondAppError(c, utils.ErrInternal(fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}
