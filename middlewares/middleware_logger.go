package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/site-engineer-app/metrics"
	"github.com/yeremiapane/site-engineer-app/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), status, latency)

		if raw != "" {
			path = path + "?" + raw
		}

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"status":    status,
			"latency":   latency.String(),
			"path":      path,
			"client_ip": c.ClientIP(),
		}
		if caller, ok := CallerFrom(c); ok {
			fields["caller_id"] = caller.ProfileID
			fields["role"] = caller.Role
		}

		entry := utils.InfoLogger.WithFields(fields)
		if status >= 500 {
			utils.ErrorLogger.WithFields(fields).Error("request")
			return
		}
		entry.Info("request")
	}
}
