package services

import (
	"context"
	"time"

	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// DashboardStats are counts over the caller's visible records. Fields that do
// not apply to the caller's role stay zero.
type DashboardStats struct {
	Role              models.Role `json:"role"`
	Date              string      `json:"date"`
	Engineers         int64       `json:"engineers"`
	Clients           int64       `json:"clients"`
	Sites             int64       `json:"sites"`
	ActiveAssignments int64       `json:"activeAssignments"`
	Reports           int64       `json:"reports"`
	ReportsToday      int64       `json:"reportsToday"`
	CheckInsToday     int64       `json:"checkInsToday"`
	OnSiteNow         int64       `json:"onSiteNow"`
	PendingLeaves     int64       `json:"pendingLeaves"`
	OnLeaveToday      int64       `json:"onLeaveToday"`
}

type DashboardService struct {
	store repositories.Store
	now   func() time.Time
}

func NewDashboardService(store repositories.Store) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// Stats computes fresh counts inside one read-only snapshot so they all
// describe the same committed state.
func (s *DashboardService) Stats(ctx context.Context, caller models.Caller) (*DashboardStats, error) {
	today := s.now().Format(models.DateLayout)
	stats := &DashboardStats{Role: caller.Role, Date: today}

	err := s.store.Snapshot(ctx, func(tx repositories.Store) error {
		sc, err := resolveScope(ctx, tx, caller)
		if err != nil {
			return err
		}
		return collectStats(ctx, tx, sc, today, stats)
	})
	if err != nil {
		return nil, storeErr(err, "dashboard")
	}
	return stats, nil
}

func collectStats(ctx context.Context, tx repositories.Store, sc *scope, today string, st *DashboardStats) error {
	engineer := models.RoleEngineer
	q := ListQuery{}
	var err error

	count := func(dst *int64, fn func() (int64, error)) {
		if err != nil {
			return
		}
		*dst, err = fn()
	}

	engineerIDs := sc.engineerIDs("")
	count(&st.Engineers, func() (int64, error) {
		return tx.CountProfiles(ctx, repositories.ProfileFilter{Role: &engineer, IDs: engineerIDs})
	})

	switch sc.role {
	case models.RoleAdmin, models.RoleHR:
		count(&st.Clients, func() (int64, error) { return tx.CountClients(ctx, repositories.ClientFilter{}) })
		count(&st.Sites, func() (int64, error) { return tx.CountSites(ctx, repositories.SiteFilter{}) })
	case models.RoleClient:
		ids := []string{}
		if sc.clientID != "" {
			ids = []string{sc.clientID}
		}
		st.Clients = int64(len(ids))
		count(&st.Sites, func() (int64, error) { return tx.CountSites(ctx, repositories.SiteFilter{ClientIDs: ids}) })
	}

	if f, ok := sc.assignmentFilter(ListQuery{ActiveOnly: true}); ok {
		count(&st.ActiveAssignments, func() (int64, error) { return tx.CountAssignments(ctx, f) })
	}
	if f, ok := sc.reportFilter(q); ok {
		count(&st.Reports, func() (int64, error) { return tx.CountReports(ctx, f) })
		f.Date = today
		count(&st.ReportsToday, func() (int64, error) { return tx.CountReports(ctx, f) })
	}
	if f, ok := sc.checkInFilter(ListQuery{Date: today}); ok {
		count(&st.CheckInsToday, func() (int64, error) { return tx.CountCheckIns(ctx, f) })
	}
	if f, ok := sc.checkInFilter(ListQuery{OpenOnly: true}); ok {
		count(&st.OnSiteNow, func() (int64, error) { return tx.CountCheckIns(ctx, f) })
	}
	if sc.role != models.RoleClient {
		if f, ok := sc.leaveFilter(ListQuery{Status: models.LeaveStatusPending}); ok {
			count(&st.PendingLeaves, func() (int64, error) { return tx.CountLeaves(ctx, f) })
		}
	}
	if f, ok := sc.leaveFilter(ListQuery{Status: models.LeaveStatusApproved, Date: today}); ok {
		count(&st.OnLeaveToday, func() (int64, error) { return tx.CountLeaves(ctx, f) })
	}

	if err != nil {
		return utils.ErrInternal(err)
	}
	return nil
}
