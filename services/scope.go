package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// scope is what a caller may see, resolved once per operation.
type scope struct {
	role models.Role
	self string

	// client role only: the linked client ("" when none) and the engineers
	// holding an active assignment to it.
	clientID        string
	clientEngineers []string
}

func resolveScope(ctx context.Context, store repositories.Store, caller models.Caller) (*scope, error) {
	sc := &scope{role: caller.Role, self: caller.ProfileID}

	switch caller.Role {
	case models.RoleAdmin, models.RoleHR, models.RoleEngineer:
		return sc, nil
	case models.RoleClient:
		client, err := store.GetClientByProfile(ctx, caller.ProfileID)
		if errors.Is(err, repositories.ErrNotFound) {
			sc.clientEngineers = []string{}
			return sc, nil
		}
		if err != nil {
			return nil, utils.ErrInternal(err)
		}
		sc.clientID = client.ID

		assignments, err := store.ListAssignments(ctx, repositories.AssignmentFilter{ClientID: client.ID, ActiveOnly: true})
		if err != nil {
			return nil, utils.ErrInternal(err)
		}
		sc.clientEngineers = uniqueStrings(len(assignments), func(i int) string { return assignments[i].EngineerID })
		return sc, nil
	default:
		return nil, utils.ErrForbidden("unknown role")
	}
}

func (s *scope) staff() bool {
	return s.role.IsStaff()
}

// engineerIDs narrows an optional requested engineer to what the caller may
// see. nil means unrestricted; an empty slice means nothing is visible.
func (s *scope) engineerIDs(requested string) []string {
	switch s.role {
	case models.RoleEngineer:
		if requested != "" && requested != s.self {
			return []string{}
		}
		return []string{s.self}
	case models.RoleClient:
		if requested == "" {
			return s.clientEngineers
		}
		if containsString(s.clientEngineers, requested) {
			return []string{requested}
		}
		return []string{}
	default:
		if requested == "" {
			return nil
		}
		return []string{requested}
	}
}

// assignmentFilter returns false when nothing can match.
func (s *scope) assignmentFilter(q ListQuery) (repositories.AssignmentFilter, bool) {
	f := repositories.AssignmentFilter{EngineerID: q.EngineerID, ClientID: q.ClientID, ActiveOnly: q.ActiveOnly}
	switch s.role {
	case models.RoleEngineer:
		if q.EngineerID != "" && q.EngineerID != s.self {
			return f, false
		}
		f.EngineerID = s.self
	case models.RoleClient:
		if s.clientID == "" || (q.ClientID != "" && q.ClientID != s.clientID) {
			return f, false
		}
		f.ClientID = s.clientID
	}
	return f, true
}

func (s *scope) reportFilter(q ListQuery) (repositories.ReportFilter, bool) {
	f := repositories.ReportFilter{EngineerID: q.EngineerID, ClientID: q.ClientID, Date: q.Date}
	switch s.role {
	case models.RoleEngineer:
		if q.EngineerID != "" && q.EngineerID != s.self {
			return f, false
		}
		f.EngineerID = s.self
	case models.RoleClient:
		if s.clientID == "" || (q.ClientID != "" && q.ClientID != s.clientID) {
			return f, false
		}
		f.ClientID = s.clientID
	}
	return f, true
}

func (s *scope) checkInFilter(q ListQuery) (repositories.CheckInFilter, bool) {
	ids := s.engineerIDs(q.EngineerID)
	f := repositories.CheckInFilter{EngineerIDs: ids, Date: q.Date, OpenOnly: q.OpenOnly}
	return f, ids == nil || len(ids) > 0
}

func (s *scope) leaveFilter(q ListQuery) (repositories.LeaveFilter, bool) {
	ids := s.engineerIDs(q.EngineerID)
	f := repositories.LeaveFilter{EngineerIDs: ids, Status: q.Status, ActiveOn: q.Date}
	if s.role == models.RoleClient {
		if q.Status != "" && q.Status != models.LeaveStatusApproved {
			return f, false
		}
		f.Status = models.LeaveStatusApproved
	}
	return f, ids == nil || len(ids) > 0
}

func (s *scope) canSeeAssignment(a *models.Assignment) bool {
	switch s.role {
	case models.RoleEngineer:
		return a.EngineerID == s.self
	case models.RoleClient:
		return s.clientID != "" && a.ClientID == s.clientID
	}
	return s.staff()
}

func (s *scope) canSeeReport(r *models.DailyReport) bool {
	switch s.role {
	case models.RoleEngineer:
		return r.EngineerID == s.self
	case models.RoleClient:
		return s.clientID != "" && r.ClientID == s.clientID
	}
	return s.staff()
}

func (s *scope) canSeeCheckIn(c *models.CheckIn) bool {
	switch s.role {
	case models.RoleEngineer:
		return c.EngineerID == s.self
	case models.RoleClient:
		return containsString(s.clientEngineers, c.EngineerID)
	}
	return s.staff()
}

func (s *scope) canSeeLeave(l *models.LeaveRequest) bool {
	switch s.role {
	case models.RoleEngineer:
		return l.EngineerID == s.self
	case models.RoleClient:
		return l.Status == models.LeaveStatusApproved && containsString(s.clientEngineers, l.EngineerID)
	}
	return s.staff()
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// uniqueStrings collects n values in first-seen order; the result is never nil.
func uniqueStrings(n int, at func(i int) string) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v := at(i)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// storeErr maps repository sentinels onto the application taxonomy.
func storeErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return utils.ErrNotFound(entity)
	case errors.Is(err, repositories.ErrConflict):
		return utils.ErrConflict(entity + " already exists")
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.ErrInternal(err)
}
