package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type ReportInput struct {
	ClientID   string
	SiteID     *string
	WorkDone   string
	Issues     *string
	ReportDate string
}

type SendReportInput struct {
	// Recipients defaults to the client's contact email.
	Recipients []string
	Note       string
}

type ReportService struct {
	workflow
	scope *ScopeService
}

func NewReportService(store repositories.Store, scope *ScopeService, publisher events.Publisher) *ReportService {
	return &ReportService{workflow: newWorkflow(store, publisher), scope: scope}
}

// Submit records a daily report for a client the engineer is actively assigned to.
func (s *ReportService) Submit(ctx context.Context, caller models.Caller, in ReportInput) (*models.ReportView, error) {
	if caller.Role != models.RoleEngineer {
		return nil, utils.ErrForbidden("only engineers can submit daily reports")
	}

	workDone := strings.TrimSpace(in.WorkDone)
	if workDone == "" {
		return nil, utils.ErrValidation("workDone is required")
	}
	if in.ClientID == "" {
		return nil, utils.ErrValidation("clientId is required")
	}
	if in.ReportDate == "" {
		in.ReportDate = s.today()
	}
	if !models.ValidDate(in.ReportDate) {
		return nil, utils.ErrValidation("reportDate must be YYYY-MM-DD")
	}

	if _, err := s.store.GetClient(ctx, in.ClientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.ErrValidation("clientId does not exist")
		}
		return nil, utils.ErrInternal(err)
	}
	siteID := trimmedPtr(in.SiteID)
	if siteID != nil {
		if err := s.requireSiteOf(ctx, *siteID, in.ClientID); err != nil {
			return nil, err
		}
	}

	n, err := s.store.CountAssignments(ctx, repositories.AssignmentFilter{
		EngineerID: caller.ProfileID,
		ClientID:   in.ClientID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	if n == 0 {
		return nil, utils.ErrValidation("engineer is not assigned to this client")
	}

	r := &models.DailyReport{
		EngineerID: caller.ProfileID,
		ClientID:   in.ClientID,
		SiteID:     siteID,
		WorkDone:   workDone,
		Issues:     trimmedPtr(in.Issues),
		ReportDate: in.ReportDate,
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, storeErr(err, "report")
	}
	utils.InfoLogger.Infof("Daily report %s submitted by %s for client %s", r.ID, caller.ProfileID, r.ClientID)

	view, err := s.scope.GetReport(ctx, caller, r.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.ReportSubmitted, Actor: caller, Report: view})
	return view, nil
}

// SendEmail queues delivery of one report, as HTML with a CSV attachment.
// It returns the recipients the delivery was queued for.
func (s *ReportService) SendEmail(ctx context.Context, caller models.Caller, id string, in SendReportInput) ([]string, error) {
	if caller.Role == models.RoleClient {
		return nil, utils.ErrForbidden("clients cannot send reports")
	}
	view, err := s.scope.GetReport(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	recipients, err := normalizeRecipients(in.Recipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		client, err := s.store.GetClient(ctx, view.ClientID)
		if err != nil {
			return nil, storeErr(err, "client")
		}
		if client.ContactEmail == "" {
			return nil, utils.ErrValidation("client has no contact email; pass recipients explicitly")
		}
		recipients = []string{client.ContactEmail}
	}

	s.publish(ctx, events.Event{
		Type:       events.ReportDelivery,
		Actor:      caller,
		Report:     view,
		Reports:    []models.ReportView{*view},
		Recipients: recipients,
		Note:       strings.TrimSpace(in.Note),
	})
	return recipients, nil
}

// Export renders the caller's visible reports as CSV.
func (s *ReportService) Export(ctx context.Context, caller models.Caller, q ListQuery) ([]byte, string, error) {
	reports, err := s.scope.ListReports(ctx, caller, q)
	if err != nil {
		return nil, "", err
	}
	data, err := ReportsCSV(reports)
	if err != nil {
		return nil, "", utils.ErrInternal(err)
	}
	return data, ReportsCSVFilename(reports), nil
}

func normalizeRecipients(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, utils.ErrValidation("invalid recipient %q", raw)
		}
		out = append(out, models.NormalizeEmail(addr.Address))
	}
	return dedupe(out), nil
}
