package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/utils"
)

func TestRequestLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.leaves()

	view, err := svc.Request(ctx, f.eng1, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-04", Reason: " Wedding "})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, view.Status)
	assert.Equal(t, models.LeaveTypeAnnual, view.LeaveType)
	assert.Equal(t, 3, view.Days)
	assert.Equal(t, "Wedding", view.Reason)
	assert.Equal(t, "Budi Santoso", view.EngineerName)
	assert.Equal(t, []events.Type{events.LeaveRequested}, f.published.types())

	onBehalf, err := svc.Request(ctx, f.hr, LeaveInput{EngineerID: f.eng2.ProfileID, LeaveType: models.LeaveTypeSick, StartDate: "2024-03-05", EndDate: "2024-03-05", Reason: "Flu"})
	require.NoError(t, err)
	assert.Equal(t, f.eng2.ProfileID, onBehalf.EngineerID)
	assert.Equal(t, 1, onBehalf.Days)
}

func TestRequestLeaveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.leaves()

	cases := []struct {
		name   string
		caller models.Caller
		in     LeaveInput
		kind   utils.ErrorKind
	}{
		{"client", f.clientUser1, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "x"}, utils.KindForbidden},
		{"end before start", f.eng1, LeaveInput{StartDate: "2024-03-04", EndDate: "2024-03-02", Reason: "x"}, utils.KindValidation},
		{"bad date", f.eng1, LeaveInput{StartDate: "2024-3-4", EndDate: "2024-03-05", Reason: "x"}, utils.KindValidation},
		{"no reason", f.eng1, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-02"}, utils.KindValidation},
		{"unknown type", f.eng1, LeaveInput{LeaveType: "sabbatical", StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "x"}, utils.KindValidation},
		{"staff without engineer", f.hr, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "x"}, utils.KindValidation},
		{"staff naming non-engineer", f.hr, LeaveInput{EngineerID: f.admin.ProfileID, StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "x"}, utils.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Request(ctx, tc.caller, tc.in)
			assert.True(t, utils.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestApproveLeaveOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.leaves()

	req, err := svc.Request(ctx, f.eng1, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "Errand"})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, f.hr, req.ID, &f.eng2.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, approved.Status)
	require.NotNil(t, approved.ApproverName)
	assert.Equal(t, "Hana HR", *approved.ApproverName)
	require.NotNil(t, approved.BackupEngineerName)
	assert.Equal(t, "Citra Dewi", *approved.BackupEngineerName)
	assert.NotNil(t, approved.DecidedAt)

	_, err = svc.Approve(ctx, f.admin, req.ID, nil)
	assert.True(t, utils.IsKind(err, utils.KindInvalidStateTransition))

	_, err = svc.Reject(ctx, f.admin, req.ID, strPtr("too late"))
	assert.True(t, utils.IsKind(err, utils.KindInvalidStateTransition))

	current, err := f.scope.GetLeave(ctx, f.admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, current.Status)
	assert.Nil(t, current.RejectReason)
	assert.Equal(t, []events.Type{events.LeaveRequested, events.LeaveDecided}, f.published.types())
}

func TestConcurrentDecisionsApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.leaves()

	req, err := svc.Request(ctx, f.eng1, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "Errand"})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		applied  int
		rejected int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = svc.Approve(ctx, f.hr, req.ID, nil)
			} else {
				_, err = svc.Reject(ctx, f.admin, req.ID, nil)
			}
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				applied++
			} else if utils.IsKind(err, utils.KindInvalidStateTransition) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.Equal(t, 5, rejected)
}

func TestDecideLeaveRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.leaves()

	req, err := svc.Request(ctx, f.eng1, LeaveInput{StartDate: "2024-03-02", EndDate: "2024-03-02", Reason: "Errand"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, f.eng2, req.ID, nil)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.Approve(ctx, f.hr, req.ID, &f.eng1.ProfileID)
	assert.True(t, utils.IsKind(err, utils.KindValidation), "backup equals requester")

	_, err = svc.Approve(ctx, f.hr, req.ID, &f.clientUser1.ProfileID)
	assert.True(t, utils.IsKind(err, utils.KindValidation), "backup is not an engineer")

	_, err = svc.Approve(ctx, f.hr, "missing", nil)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	rejected, err := svc.Reject(ctx, f.hr, req.ID, strPtr(" Peak week "))
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectReason)
	assert.Equal(t, "Peak week", *rejected.RejectReason)
}

func TestLeaveDays(t *testing.T) {
	days, err := leaveDays("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = leaveDays("2024-12-31", "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}
