package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type fakeSessions map[string]*models.Profile

func (f fakeSessions) CurrentUser(_ context.Context, token string) (*models.Profile, error) {
	if p, ok := f[token]; ok {
		return p, nil
	}
	return nil, utils.ErrUnauthenticated()
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(sessions SessionResolver, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery())
	handlers := append([]gin.HandlerFunc{SessionAuth(sessions)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		caller, _ := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": caller.ProfileID, "token": SessionToken(c)})
	})
	r.GET("/me", handlers...)
	r.GET("/boom", func(c *gin.Context) { panic(errors.New("boom")) })
	return r
}

func TestSessionAuth(t *testing.T) {
	sessions := fakeSessions{"good": {Base: models.Base{ID: "p1"}, Role: models.RoleEngineer}}
	r := newEngine(sessions)

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"wrong scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized},
		{"unknown token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer bad") }, http.StatusUnauthorized},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"}) }, http.StatusOK},
		{"query without upgrade", func(req *http.Request) { req.URL.RawQuery = "token=good" }, http.StatusUnauthorized},
		{"query on upgrade", func(req *http.Request) {
			req.URL.RawQuery = "token=good"
			req.Header.Set("Upgrade", "websocket")
		}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	sessions := fakeSessions{
		"eng":   {Base: models.Base{ID: "e1"}, Role: models.RoleEngineer},
		"hr":    {Base: models.Base{ID: "h1"}, Role: models.RoleHR},
		"admin": {Base: models.Base{ID: "a1"}, Role: models.RoleAdmin},
	}
	r := newEngine(sessions, StaffOnly())

	for token, want := range map[string]int{"eng": http.StatusForbidden, "hr": http.StatusOK, "admin": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	r := newEngine(fakeSessions{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"internal server error"}`, w.Body.String())
}

func TestLoginRateLimiterIsPerIP(t *testing.T) {
	rl := NewRateLimiter(2)
	r := gin.New()
	r.POST("/login", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))

	now := time.Now().Add(time.Hour)
	rl.now = func() time.Time { return now }
	rl.Cleanup()
	assert.Empty(t, rl.ips)
}

func TestGlobalRateLimit(t *testing.T) {
	limit, err := GlobalRateLimit("2-M")
	assert.NoError(t, err)

	r := gin.New()
	r.Use(limit)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = GlobalRateLimit("lots")
	assert.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares("https://app.example.com"), SecurityHeaders(false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
