package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/i18n"
	"github.com/yeremiapane/site-engineer-app/models"
)

//go:embed templates/*.html
var mailTemplateFS embed.FS

const defaultCompanyName = "Site Engineer"

// mailDirectory is the lookup surface the composer needs to address mail.
type mailDirectory interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error)
}

type mailData struct {
	Subject string
	Intro   string
	Footer  string
	Note    string
	Status  string
	Company models.CompanyProfile
	CheckIn *models.CheckInView
	Reports []models.ReportView
	Leave   *models.LeaveView
}

// MailComposer turns workflow events into addressed, localized messages.
type MailComposer struct {
	dir       mailDirectory
	ops       []string
	locale    string
	templates map[string]*template.Template
}

func NewMailComposer(dir mailDirectory, opsRecipients []string, locale string) (*MailComposer, error) {
	c := &MailComposer{
		dir:       dir,
		ops:       opsRecipients,
		locale:    locale,
		templates: map[string]*template.Template{},
	}
	for _, name := range []string{"check_in", "report", "leave"} {
		tmpl, err := template.New("layout.html").
			Funcs(templateFuncs(func(id string) string { return id })).
			ParseFS(mailTemplateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s mail template: %w", name, err)
		}
		c.templates[name] = tmpl
	}
	return c, nil
}

func templateFuncs(t func(string) string) template.FuncMap {
	return template.FuncMap{
		"t":     t,
		"deref": deref,
		"derefFloat": func(f *float64) float64 {
			if f == nil {
				return 0
			}
			return *f
		},
	}
}

// Compose returns the messages for e. Events without a mail counterpart, or
// without anyone to address, yield none.
func (c *MailComposer) Compose(ctx context.Context, e events.Event) ([]*MailMessage, error) {
	ctx = i18n.WithLocale(ctx, c.locale)
	company := c.company(ctx)
	data := &mailData{
		Company: company,
		Footer:  i18n.T(ctx, "footer", map[string]any{"Company": company.Name}),
		Note:    e.Note,
	}

	var (
		to       []string
		tmplName string
		text     []string
		attach   []Attachment
	)

	switch e.Type {
	case events.CheckIn:
		if e.CheckIn == nil {
			return nil, nil
		}
		to = c.ops
		tmplName = "check_in"
		vars := map[string]any{"Engineer": e.CheckIn.EngineerName}
		data.CheckIn = e.CheckIn
		data.Subject = i18n.T(ctx, "subject_check_in", vars)
		data.Intro = i18n.T(ctx, "intro_check_in", vars)
		text = checkInText(ctx, e.CheckIn)

	case events.ReportSubmitted:
		if e.Report == nil {
			return nil, nil
		}
		to = append([]string{}, c.ops...)
		if client, err := c.dir.GetClient(ctx, e.Report.ClientID); err == nil && client.ContactEmail != "" {
			to = append(to, client.ContactEmail)
		}
		tmplName = "report"
		data.Reports = []models.ReportView{*e.Report}
		data.Subject = i18n.T(ctx, "subject_report_submitted", map[string]any{
			"Engineer": e.Report.EngineerName,
			"Client":   e.Report.ClientName,
			"Date":     e.Report.ReportDate,
		})
		data.Intro = i18n.T(ctx, "intro_report_submitted")
		text = reportText(ctx, data.Reports)

	case events.ReportDelivery:
		if len(e.Reports) == 0 {
			return nil, nil
		}
		to = e.Recipients
		tmplName = "report"
		data.Reports = e.Reports
		data.Subject = i18n.T(ctx, "subject_report_delivery", map[string]any{
			"Client": e.Reports[0].ClientName,
			"Date":   e.Reports[0].ReportDate,
		})
		data.Intro = i18n.T(ctx, "intro_report_delivery")
		text = reportText(ctx, data.Reports)
		csvData, err := ReportsCSV(e.Reports)
		if err != nil {
			return nil, err
		}
		attach = []Attachment{{
			Filename:    ReportsCSVFilename(e.Reports),
			ContentType: "text/csv",
			Data:        csvData,
		}}

	case events.LeaveRequested:
		if e.Leave == nil {
			return nil, nil
		}
		to = c.ops
		tmplName = "leave"
		data.Leave = e.Leave
		data.Status = i18n.T(ctx, "status_"+string(e.Leave.Status))
		data.Subject = i18n.T(ctx, "subject_leave_requested", map[string]any{
			"Engineer": e.Leave.EngineerName,
			"Start":    e.Leave.StartDate,
			"End":      e.Leave.EndDate,
		})
		data.Intro = i18n.T(ctx, "intro_leave_requested")
		text = leaveText(ctx, e.Leave, data.Status)

	case events.LeaveDecided:
		if e.Leave == nil {
			return nil, nil
		}
		engineer, err := c.dir.GetProfile(ctx, e.Leave.EngineerID)
		if err != nil {
			return nil, fmt.Errorf("lookup engineer %s: %w", e.Leave.EngineerID, err)
		}
		to = []string{engineer.Email}
		tmplName = "leave"
		data.Leave = e.Leave
		data.Status = i18n.T(ctx, "status_"+string(e.Leave.Status))
		vars := map[string]any{"Status": data.Status}
		data.Subject = i18n.T(ctx, "subject_leave_decided", vars)
		data.Intro = i18n.T(ctx, "intro_leave_decided", vars)
		text = leaveText(ctx, e.Leave, data.Status)

	default:
		return nil, nil
	}

	to = dedupe(to)
	if len(to) == 0 {
		return nil, nil
	}

	html, err := c.render(ctx, tmplName, data)
	if err != nil {
		return nil, err
	}

	body := append([]string{i18n.T(ctx, "greeting"), "", data.Intro, ""}, text...)
	if data.Note != "" {
		body = append(body, "", i18n.T(ctx, "label_note")+": "+data.Note)
	}
	body = append(body, "", data.Footer)

	return []*MailMessage{{
		Event:       e.Type,
		Subject:     data.Subject,
		To:          to,
		HTML:        html,
		Text:        strings.Join(body, "\n"),
		Attachments: attach,
	}}, nil
}

func (c *MailComposer) render(ctx context.Context, name string, data *mailData) (string, error) {
	base, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown mail template %q", name)
	}
	tmpl, err := base.Clone()
	if err != nil {
		return "", err
	}
	tmpl.Funcs(templateFuncs(func(id string) string { return i18n.T(ctx, id) }))

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

func (c *MailComposer) company(ctx context.Context) models.CompanyProfile {
	cp, err := c.dir.GetCompanyProfile(ctx)
	if err != nil || cp.Name == "" {
		return models.CompanyProfile{Name: defaultCompanyName}
	}
	return *cp
}

func checkInText(ctx context.Context, c *models.CheckInView) []string {
	lines := []string{
		i18n.T(ctx, "label_engineer") + ": " + c.EngineerName,
		i18n.T(ctx, "label_date") + ": " + c.Date,
		i18n.T(ctx, "label_time") + ": " + c.CheckInTime.Format("15:04"),
	}
	if c.LocationName != nil {
		lines = append(lines, i18n.T(ctx, "label_location")+": "+*c.LocationName)
	}
	return lines
}

func reportText(ctx context.Context, reports []models.ReportView) []string {
	var lines []string
	for _, r := range reports {
		lines = append(lines,
			i18n.T(ctx, "label_date")+": "+r.ReportDate,
			i18n.T(ctx, "label_engineer")+": "+r.EngineerName,
			i18n.T(ctx, "label_client")+": "+r.ClientName,
		)
		if r.SiteName != nil {
			lines = append(lines, i18n.T(ctx, "label_site")+": "+*r.SiteName)
		}
		lines = append(lines, i18n.T(ctx, "label_work_done")+": "+r.WorkDone)
		if r.Issues != nil {
			lines = append(lines, i18n.T(ctx, "label_issues")+": "+*r.Issues)
		}
		lines = append(lines, "")
	}
	return lines
}

func leaveText(ctx context.Context, l *models.LeaveView, status string) []string {
	lines := []string{
		i18n.T(ctx, "label_engineer") + ": " + l.EngineerName,
		i18n.T(ctx, "label_leave_type") + ": " + string(l.LeaveType),
		i18n.T(ctx, "label_period") + ": " + l.StartDate + " - " + l.EndDate,
		fmt.Sprintf("%s: %d", i18n.T(ctx, "label_days"), l.Days),
		i18n.T(ctx, "label_reason") + ": " + l.Reason,
		i18n.T(ctx, "label_status") + ": " + status,
	}
	if l.RejectReason != nil {
		lines = append(lines, i18n.T(ctx, "label_reject_reason")+": "+*l.RejectReason)
	}
	return lines
}
