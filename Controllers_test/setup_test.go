package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/hub"
	"github.com/yeremiapane/site-engineer-app/middlewares"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/router"
	"github.com/yeremiapane/site-engineer-app/services"
	"github.com/yeremiapane/site-engineer-app/testutil"
	"github.com/yeremiapane/site-engineer-app/utils"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	t       *testing.T
	router  *gin.Engine
	store   *repositories.GormStore
	hub     *hub.Hub
	tokens  map[string]string
	ids     map[string]string
	client1 *models.Client
	client2 *models.Client
}

// setupApp builds the full HTTP stack over an in-memory database seeded with
// one admin, two engineers and two clients. eng1 is assigned to Acme Tower.
func setupApp(t *testing.T, subscribers ...events.Publisher) *testApp {
	t.Helper()
	ctx := context.Background()

	store := repositories.NewGormStore(testutil.SetupTestDB(t))
	hasher := &services.BcryptHasher{Cost: bcrypt.MinCost}
	h := hub.New()
	t.Cleanup(h.Close)

	bus := events.NewBus(h)
	for _, s := range subscribers {
		bus.Subscribe(s)
	}

	auth, err := services.NewAuthService(store, services.NewMemorySessionStore(), hasher, utils.NewTokenSigner("test-secret", time.Hour))
	require.NoError(t, err)
	scope := services.NewScopeService(store)

	r, err := router.SetupRouter(router.Deps{
		Auth:         auth,
		Scope:        scope,
		Directory:    services.NewDirectoryService(store, hasher, scope),
		Reports:      services.NewReportService(store, scope, bus),
		CheckIns:     services.NewCheckInService(store, scope, bus),
		Leaves:       services.NewLeaveService(store, scope, bus),
		Dashboard:    services.NewDashboardService(store),
		Hub:          h,
		Store:        store,
		LoginLimiter: middlewares.NewRateLimiter(1000),
		CORSOrigin:   "*",
	})
	require.NoError(t, err)

	app := &testApp{t: t, router: r, store: store, hub: h, tokens: map[string]string{}, ids: map[string]string{}}

	seed := func(email, name string, role models.Role) {
		hash, err := hasher.Hash(testPassword)
		require.NoError(t, err)
		p := &models.Profile{Email: email, FullName: name, Role: role, PasswordHash: hash}
		require.NoError(t, store.CreateProfile(ctx, p))
		app.ids[email] = p.ID
	}
	seed("admin@example.com", "Ayu Admin", models.RoleAdmin)
	seed("eng1@example.com", "Budi Santoso", models.RoleEngineer)
	seed("eng2@example.com", "Citra Dewi", models.RoleEngineer)
	seed("owner@acme.example.com", "Acme Owner", models.RoleClient)
	seed("owner@globex.example.com", "Globex Owner", models.RoleClient)

	owner1, owner2 := app.ids["owner@acme.example.com"], app.ids["owner@globex.example.com"]
	app.client1 = &models.Client{Name: "Acme Tower", ContactEmail: "pm@acme.example.com", ProfileID: &owner1}
	require.NoError(t, store.CreateClient(ctx, app.client1))
	app.client2 = &models.Client{Name: "Globex Plant", ContactEmail: "pm@globex.example.com", ProfileID: &owner2}
	require.NoError(t, store.CreateClient(ctx, app.client2))

	require.NoError(t, store.CreateAssignment(ctx, &models.Assignment{
		EngineerID:   app.ids["eng1@example.com"],
		ClientID:     app.client1.ID,
		Active:       true,
		AssignedDate: "2024-01-01",
	}))
	return app
}

// login returns a session token for email, logging in once per app.
func (a *testApp) login(email string) string {
	a.t.Helper()
	if tok, ok := a.tokens[email]; ok {
		return tok
	}
	w := a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": testPassword})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	data := decode(a.t, w)["data"].(map[string]interface{})
	tok := data["token"].(string)
	a.tokens[email] = tok
	return tok
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) as(email, method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(method, path, a.login(email), body)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func dataList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	data, _ := decode(t, w)["data"].([]interface{})
	return data
}

func dataObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	data, ok := decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return data
}
