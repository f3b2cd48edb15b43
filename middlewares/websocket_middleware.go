package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// websocketToken reads ?token= on websocket upgrades, where browsers cannot
// set an Authorization header. Plain requests never authenticate this way.
func websocketToken(c *gin.Context) string {
	if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return ""
	}
	return strings.TrimSpace(c.Query("token"))
}
