package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/utils"
)

func TestClientSeesOnlyReportsForItsClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.reports().Submit(ctx, f.eng1, ReportInput{
		ClientID:   f.client1.ID,
		SiteID:     &f.site1.ID,
		WorkDone:   "Foundation poured",
		ReportDate: "2024-05-01",
	})
	require.NoError(t, err)

	visible, err := f.scope.ListReports(ctx, f.clientUser1, ListQuery{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Foundation poured", visible[0].WorkDone)
	assert.Equal(t, "Budi Santoso", visible[0].EngineerName)
	assert.Equal(t, "Acme Tower", visible[0].ClientName)
	require.NotNil(t, visible[0].SiteName)
	assert.Equal(t, "North Wing", *visible[0].SiteName)

	other, err := f.scope.ListReports(ctx, f.clientUser2, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.scope.GetReport(ctx, f.clientUser2, submitted.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	// an explicit filter cannot widen the scope
	other, err = f.scope.ListReports(ctx, f.clientUser2, ListQuery{ClientID: f.client1.ID})
	require.NoError(t, err)
	assert.Empty(t, other)

	mine, err := f.scope.ListReports(ctx, f.eng2, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := f.scope.ListReports(ctx, f.admin, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestClientSeesCheckInsOfAssignedEngineersOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.checkIns()

	own, err := svc.CheckIn(ctx, f.eng1, CheckInInput{})
	require.NoError(t, err)
	foreign, err := svc.CheckIn(ctx, f.eng2, CheckInInput{})
	require.NoError(t, err)

	rows, err := f.scope.ListCheckIns(ctx, f.clientUser1, ListQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, own.ID, rows[0].ID)
	assert.Equal(t, "Budi Santoso", rows[0].EngineerName)

	_, err = f.scope.GetCheckIn(ctx, f.clientUser1, foreign.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	rows, err = f.scope.ListCheckIns(ctx, f.clientUser2, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = f.scope.ListCheckIns(ctx, f.eng2, ListQuery{EngineerID: f.eng1.ProfileID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = f.scope.ListCheckIns(ctx, f.hr, ListQuery{OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestClientSeesOnlyApprovedLeavesOfAssignedEngineers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leaves := f.leaves()

	approved, err := leaves.Request(ctx, f.eng1, LeaveInput{StartDate: "2024-06-03", EndDate: "2024-06-04", Reason: "Family event"})
	require.NoError(t, err)
	_, err = leaves.Approve(ctx, f.hr, approved.ID, nil)
	require.NoError(t, err)

	pending, err := leaves.Request(ctx, f.eng1, LeaveInput{StartDate: "2024-07-01", EndDate: "2024-07-01", Reason: "Doctor"})
	require.NoError(t, err)

	unassigned, err := leaves.Request(ctx, f.eng2, LeaveInput{StartDate: "2024-06-03", EndDate: "2024-06-03", Reason: "Rest"})
	require.NoError(t, err)
	_, err = leaves.Approve(ctx, f.admin, unassigned.ID, nil)
	require.NoError(t, err)

	rows, err := f.scope.ListLeaves(ctx, f.clientUser1, ListQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, approved.ID, rows[0].ID)

	_, err = f.scope.GetLeave(ctx, f.clientUser1, pending.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	rows, err = f.scope.ListLeaves(ctx, f.clientUser1, ListQuery{Status: models.LeaveStatusPending})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = f.scope.ListLeaves(ctx, f.eng1, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = f.scope.ListLeaves(ctx, f.hr, ListQuery{Date: "2024-06-03"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUnlinkedClientSeesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stray := f.seedProfile(t, "stray@example.com", "Stray Client", models.RoleClient)

	_, err := f.reports().Submit(ctx, f.eng1, ReportInput{ClientID: f.client1.ID, WorkDone: "Rebar tied"})
	require.NoError(t, err)

	reports, err := f.scope.ListReports(ctx, stray, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, reports)

	assignments, err := f.scope.ListAssignments(ctx, stray, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, assignments)

	clients, err := f.scope.ListClients(ctx, stray)
	require.NoError(t, err)
	assert.Empty(t, clients)

	engineers, err := f.scope.ListEngineers(ctx, stray)
	require.NoError(t, err)
	assert.Empty(t, engineers)
}

func TestDirectoryReadsAreScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.scope.ListProfiles(ctx, f.eng1, nil)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	engineer := models.RoleEngineer
	profiles, err := f.scope.ListProfiles(ctx, f.hr, &engineer)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	_, err = f.scope.GetProfile(ctx, f.eng1, f.eng2.ProfileID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	self, err := f.scope.GetProfile(ctx, f.eng1, f.eng1.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", self.FullName)

	clients, err := f.scope.ListClients(ctx, f.eng1)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, f.client1.ID, clients[0].ID)

	_, err = f.scope.GetClient(ctx, f.eng1, f.client2.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	engineers, err := f.scope.ListEngineers(ctx, f.clientUser1)
	require.NoError(t, err)
	require.Len(t, engineers, 1)
	assert.Equal(t, f.eng1.ProfileID, engineers[0].ID)

	sites, err := f.scope.ListSites(ctx, f.clientUser2, f.client1.ID)
	require.NoError(t, err)
	assert.Empty(t, sites)

	sites, err = f.scope.ListSites(ctx, f.admin, "")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Acme Tower", sites[0].ClientName)

	_, err = f.scope.GetSite(ctx, f.clientUser2, f.site1.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestUnknownRoleIsForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.scope.ListReports(context.Background(), models.Caller{ProfileID: "x", Role: "guest"}, ListQuery{})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestListQueryValidate(t *testing.T) {
	assert.NoError(t, ListQuery{Date: "2024-05-01", Status: models.LeaveStatusApproved}.Validate())
	assert.True(t, utils.IsKind(ListQuery{Date: "01/05/2024"}.Validate(), utils.KindValidation))
	assert.True(t, utils.IsKind(ListQuery{Status: "archived"}.Validate(), utils.KindValidation))
}
