package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "session_token"

const (
	callerKey = "caller"
	tokenKey  = "session_token"
)

// SessionResolver maps a session token to the profile behind it.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.Profile, error)
}

// SessionAuth requires a live server-side session. The token comes from the
// Authorization header, then the session cookie, then (websocket upgrades
// only) the token query parameter.
func SessionAuth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			utils.RespondAppError(c, utils.ErrUnauthenticated())
			c.Abort()
			return
		}

		profile, err := sessions.CurrentUser(c.Request.Context(), token)
		if err != nil {
			utils.RespondAppError(c, err)
			c.Abort()
			return
		}

		c.Set(callerKey, models.CallerFromProfile(profile))
		c.Set(tokenKey, token)
		c.Next()
	}
}

func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	return websocketToken(c)
}

// CallerFrom returns the caller set by SessionAuth.
func CallerFrom(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}

// SessionToken returns the token SessionAuth accepted.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
