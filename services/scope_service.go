package services

import (
	"context"

	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// ListQuery carries the optional listing filters. Each listing uses the
// fields that apply to it and ignores the rest.
type ListQuery struct {
	EngineerID string
	ClientID   string
	Date       string
	Status     models.LeaveStatus
	ActiveOnly bool
	OpenOnly   bool
}

func (q ListQuery) Validate() error {
	if q.Date != "" && !models.ValidDate(q.Date) {
		return utils.ErrValidation("date must be YYYY-MM-DD")
	}
	if q.Status != "" && !q.Status.Valid() {
		return utils.ErrValidation("unknown leave status %q", q.Status)
	}
	return nil
}

// ScopeService is the role-scoped read side: every listing and single-record
// read goes through the caller's scope and is enriched with display names.
type ScopeService struct {
	store repositories.Store
}

func NewScopeService(store repositories.Store) *ScopeService {
	return &ScopeService{store: store}
}

// ---------------------------------------------------------------- assignments

func (s *ScopeService) ListAssignments(ctx context.Context, caller models.Caller, q ListQuery) ([]models.AssignmentView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	f, ok := sc.assignmentFilter(q)
	if !ok {
		return []models.AssignmentView{}, nil
	}
	rows, err := s.store.ListAssignments(ctx, f)
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return assignmentViews(ctx, s.store, rows)
}

func (s *ScopeService) GetAssignment(ctx context.Context, caller models.Caller, id string) (*models.AssignmentView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, storeErr(err, "assignment")
	}
	if !sc.canSeeAssignment(a) {
		return nil, utils.ErrNotFound("assignment")
	}
	views, err := assignmentViews(ctx, s.store, []models.Assignment{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func assignmentViews(ctx context.Context, store repositories.Store, rows []models.Assignment) ([]models.AssignmentView, error) {
	var refs nameRefs
	for i := range rows {
		refs.profile(rows[i].EngineerID)
		refs.client(rows[i].ClientID)
		refs.site(rows[i].SiteID)
	}
	n, err := loadNames(ctx, store, refs)
	if err != nil {
		return nil, err
	}

	out := make([]models.AssignmentView, 0, len(rows))
	for _, a := range rows {
		out = append(out, models.AssignmentView{
			Assignment:   a,
			EngineerName: n.profile(a.EngineerID),
			ClientName:   n.client(a.ClientID),
			SiteName:     n.site(a.SiteID),
		})
	}
	return out, nil
}

// ---------------------------------------------------------------- reports

func (s *ScopeService) ListReports(ctx context.Context, caller models.Caller, q ListQuery) ([]models.ReportView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	f, ok := sc.reportFilter(q)
	if !ok {
		return []models.ReportView{}, nil
	}
	rows, err := s.store.ListReports(ctx, f)
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return reportViews(ctx, s.store, rows)
}

func (s *ScopeService) GetReport(ctx context.Context, caller models.Caller, id string) (*models.ReportView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, storeErr(err, "report")
	}
	if !sc.canSeeReport(r) {
		return nil, utils.ErrNotFound("report")
	}
	views, err := reportViews(ctx, s.store, []models.DailyReport{*r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func reportViews(ctx context.Context, store repositories.Store, rows []models.DailyReport) ([]models.ReportView, error) {
	var refs nameRefs
	for i := range rows {
		refs.profile(rows[i].EngineerID)
		refs.client(rows[i].ClientID)
		refs.site(rows[i].SiteID)
	}
	n, err := loadNames(ctx, store, refs)
	if err != nil {
		return nil, err
	}

	out := make([]models.ReportView, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ReportView{
			DailyReport:  r,
			EngineerName: n.profile(r.EngineerID),
			ClientName:   n.client(r.ClientID),
			SiteName:     n.site(r.SiteID),
		})
	}
	return out, nil
}

// ---------------------------------------------------------------- check-ins

func (s *ScopeService) ListCheckIns(ctx context.Context, caller models.Caller, q ListQuery) ([]models.CheckInView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	f, ok := sc.checkInFilter(q)
	if !ok {
		return []models.CheckInView{}, nil
	}
	rows, err := s.store.ListCheckIns(ctx, f)
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return checkInViews(ctx, s.store, rows)
}

func (s *ScopeService) GetCheckIn(ctx context.Context, caller models.Caller, id string) (*models.CheckInView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetCheckIn(ctx, id)
	if err != nil {
		return nil, storeErr(err, "check-in")
	}
	if !sc.canSeeCheckIn(c) {
		return nil, utils.ErrNotFound("check-in")
	}
	views, err := checkInViews(ctx, s.store, []models.CheckIn{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func checkInViews(ctx context.Context, store repositories.Store, rows []models.CheckIn) ([]models.CheckInView, error) {
	var refs nameRefs
	for i := range rows {
		refs.profile(rows[i].EngineerID)
	}
	n, err := loadNames(ctx, store, refs)
	if err != nil {
		return nil, err
	}

	out := make([]models.CheckInView, 0, len(rows))
	for _, c := range rows {
		out = append(out, models.CheckInView{CheckIn: c, EngineerName: n.profile(c.EngineerID)})
	}
	return out, nil
}

// ---------------------------------------------------------------- leave requests

func (s *ScopeService) ListLeaves(ctx context.Context, caller models.Caller, q ListQuery) ([]models.LeaveView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	f, ok := sc.leaveFilter(q)
	if !ok {
		return []models.LeaveView{}, nil
	}
	rows, err := s.store.ListLeaves(ctx, f)
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return leaveViews(ctx, s.store, rows)
}

func (s *ScopeService) GetLeave(ctx context.Context, caller models.Caller, id string) (*models.LeaveView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	l, err := s.store.GetLeave(ctx, id)
	if err != nil {
		return nil, storeErr(err, "leave request")
	}
	if !sc.canSeeLeave(l) {
		return nil, utils.ErrNotFound("leave request")
	}
	views, err := leaveViews(ctx, s.store, []models.LeaveRequest{*l})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func leaveViews(ctx context.Context, store repositories.Store, rows []models.LeaveRequest) ([]models.LeaveView, error) {
	var refs nameRefs
	for i := range rows {
		refs.profile(rows[i].EngineerID)
		refs.optProfile(rows[i].ApproverID)
		refs.optProfile(rows[i].BackupEngineerID)
	}
	n, err := loadNames(ctx, store, refs)
	if err != nil {
		return nil, err
	}

	out := make([]models.LeaveView, 0, len(rows))
	for _, l := range rows {
		out = append(out, models.LeaveView{
			LeaveRequest:       l,
			EngineerName:       n.profile(l.EngineerID),
			ApproverName:       n.optProfile(l.ApproverID),
			BackupEngineerName: n.optProfile(l.BackupEngineerID),
		})
	}
	return out, nil
}

// ---------------------------------------------------------------- directory reads

// ListProfiles is staff only; role narrows the result when set.
func (s *ScopeService) ListProfiles(ctx context.Context, caller models.Caller, role *models.Role) ([]models.Profile, error) {
	if !caller.Role.IsStaff() {
		return nil, utils.ErrForbidden("only admin or hr can list profiles")
	}
	rows, err := s.store.ListProfiles(ctx, repositories.ProfileFilter{Role: role})
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return rows, nil
}

// GetProfile returns any profile to staff and only the caller's own to everyone else.
func (s *ScopeService) GetProfile(ctx context.Context, caller models.Caller, id string) (*models.Profile, error) {
	if !caller.Role.IsStaff() && id != caller.ProfileID {
		return nil, utils.ErrNotFound("profile")
	}
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	return p, nil
}

// ListEngineers: staff see all engineers, clients the engineers assigned to
// them, engineers only themselves.
func (s *ScopeService) ListEngineers(ctx context.Context, caller models.Caller) ([]models.Profile, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	engineer := models.RoleEngineer
	f := repositories.ProfileFilter{Role: &engineer, IDs: sc.engineerIDs("")}
	rows, err := s.store.ListProfiles(ctx, f)
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return rows, nil
}

// visibleClientIDs returns nil for staff (everything), the linked client for
// client users and the actively assigned clients for engineers.
func (s *ScopeService) visibleClientIDs(ctx context.Context, sc *scope) ([]string, error) {
	switch sc.role {
	case models.RoleClient:
		if sc.clientID == "" {
			return []string{}, nil
		}
		return []string{sc.clientID}, nil
	case models.RoleEngineer:
		rows, err := s.store.ListAssignments(ctx, repositories.AssignmentFilter{EngineerID: sc.self, ActiveOnly: true})
		if err != nil {
			return nil, utils.ErrInternal(err)
		}
		return uniqueStrings(len(rows), func(i int) string { return rows[i].ClientID }), nil
	}
	return nil, nil
}

func (s *ScopeService) ListClients(ctx context.Context, caller models.Caller) ([]models.Client, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	ids, err := s.visibleClientIDs(ctx, sc)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListClients(ctx, repositories.ClientFilter{IDs: ids})
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return rows, nil
}

func (s *ScopeService) GetClient(ctx context.Context, caller models.Caller, id string) (*models.Client, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	ids, err := s.visibleClientIDs(ctx, sc)
	if err != nil {
		return nil, err
	}
	if ids != nil && !containsString(ids, id) {
		return nil, utils.ErrNotFound("client")
	}
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, storeErr(err, "client")
	}
	return c, nil
}

func (s *ScopeService) ListSites(ctx context.Context, caller models.Caller, clientID string) ([]models.SiteView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	ids, err := s.visibleClientIDs(ctx, sc)
	if err != nil {
		return nil, err
	}
	if clientID != "" {
		if ids != nil && !containsString(ids, clientID) {
			return []models.SiteView{}, nil
		}
		ids = []string{clientID}
	}

	rows, err := s.store.ListSites(ctx, repositories.SiteFilter{ClientIDs: ids})
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return siteViews(ctx, s.store, rows)
}

func (s *ScopeService) GetSite(ctx context.Context, caller models.Caller, id string) (*models.SiteView, error) {
	sc, err := resolveScope(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}
	site, err := s.store.GetSite(ctx, id)
	if err != nil {
		return nil, storeErr(err, "site")
	}
	ids, err := s.visibleClientIDs(ctx, sc)
	if err != nil {
		return nil, err
	}
	if ids != nil && !containsString(ids, site.ClientID) {
		return nil, utils.ErrNotFound("site")
	}
	views, err := siteViews(ctx, s.store, []models.Site{*site})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func siteViews(ctx context.Context, store repositories.Store, rows []models.Site) ([]models.SiteView, error) {
	var refs nameRefs
	for i := range rows {
		refs.client(rows[i].ClientID)
	}
	n, err := loadNames(ctx, store, refs)
	if err != nil {
		return nil, err
	}
	out := make([]models.SiteView, 0, len(rows))
	for _, site := range rows {
		out = append(out, models.SiteView{Site: site, ClientName: n.client(site.ClientID)})
	}
	return out, nil
}
