package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/testutil"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

// recorder is an events.Publisher that keeps what it receives.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// fixture seeds a small organisation:
//
//	eng1 (Budi Santoso) is actively assigned to client1 (site1)
//	eng2 has no assignment
//	clientUser1 is linked to client1, clientUser2 to client2
type fixture struct {
	store     repositories.Store
	hasher    *BcryptHasher
	scope     *ScopeService
	published *recorder

	admin, hr, eng1, eng2, clientUser1, clientUser2 models.Caller

	client1, client2 *models.Client
	site1            *models.Site
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := repositories.NewGormStore(testutil.SetupTestDB(t))
	f := &fixture{
		store:     store,
		hasher:    &BcryptHasher{Cost: bcrypt.MinCost},
		scope:     NewScopeService(store),
		published: &recorder{},
	}

	f.admin = f.seedProfile(t, "admin@example.com", "Ayu Admin", models.RoleAdmin)
	f.hr = f.seedProfile(t, "hr@example.com", "Hana HR", models.RoleHR)
	f.eng1 = f.seedProfile(t, "eng1@example.com", "Budi Santoso", models.RoleEngineer)
	f.eng2 = f.seedProfile(t, "eng2@example.com", "Citra Dewi", models.RoleEngineer)
	f.clientUser1 = f.seedProfile(t, "owner@acme.example.com", "Acme Owner", models.RoleClient)
	f.clientUser2 = f.seedProfile(t, "owner@globex.example.com", "Globex Owner", models.RoleClient)

	f.client1 = &models.Client{Name: "Acme Tower", ContactPerson: "Andi", ContactEmail: "pm@acme.example.com", ProfileID: &f.clientUser1.ProfileID}
	require.NoError(t, store.CreateClient(ctx, f.client1))
	f.client2 = &models.Client{Name: "Globex Plant", ContactEmail: "pm@globex.example.com", ProfileID: &f.clientUser2.ProfileID}
	require.NoError(t, store.CreateClient(ctx, f.client2))

	f.site1 = &models.Site{ClientID: f.client1.ID, Name: "North Wing", Location: "Jakarta"}
	require.NoError(t, store.CreateSite(ctx, f.site1))

	require.NoError(t, store.CreateAssignment(ctx, &models.Assignment{
		EngineerID:   f.eng1.ProfileID,
		ClientID:     f.client1.ID,
		SiteID:       &f.site1.ID,
		Active:       true,
		AssignedDate: "2024-01-01",
	}))
	return f
}

func (f *fixture) seedProfile(t *testing.T, email, name string, role models.Role) models.Caller {
	t.Helper()
	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)
	p := &models.Profile{Email: email, FullName: name, Role: role, PasswordHash: hash}
	require.NoError(t, f.store.CreateProfile(context.Background(), p))
	return models.CallerFromProfile(p)
}

func (f *fixture) reports() *ReportService {
	return NewReportService(f.store, f.scope, f.published)
}

func (f *fixture) leaves() *LeaveService {
	return NewLeaveService(f.store, f.scope, f.published)
}

func (f *fixture) checkIns() *CheckInService {
	return NewCheckInService(f.store, f.scope, f.published)
}

func (f *fixture) directory() *DirectoryService {
	return NewDirectoryService(f.store, f.hasher, f.scope)
}

func strPtr(s string) *string { return &s }
