package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/site-engineer-app/models"
)

var (
	// ErrNotFound is returned when no record matches the requested id or key.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")

	// ErrPreconditionFailed is returned by guarded updates when the record exists
	// but no longer satisfies the guard (e.g. a leave request that is not pending).
	ErrPreconditionFailed = errors.New("record does not satisfy update precondition")
)

// ProfileFilter narrows profile listings. A nil IDs slice means no restriction,
// a non-nil empty slice matches nothing.
type ProfileFilter struct {
	Role *models.Role
	IDs  []string
}

type ClientFilter struct {
	IDs []string
}

type SiteFilter struct {
	IDs       []string
	ClientIDs []string
}

type AssignmentFilter struct {
	EngineerID string
	ClientID   string
	ActiveOnly bool
}

type CheckInFilter struct {
	EngineerIDs []string
	Date        string
	OpenOnly    bool
}

type ReportFilter struct {
	EngineerID string
	ClientID   string
	Date       string
}

type LeaveFilter struct {
	EngineerIDs []string
	Status      models.LeaveStatus
	// ActiveOn keeps requests whose date range contains the given day.
	ActiveOn string
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListProfiles(ctx context.Context, f ProfileFilter) ([]models.Profile, error)
	CountProfiles(ctx context.Context, f ProfileFilter) (int64, error)
	UpdateProfile(ctx context.Context, id string, patch map[string]interface{}) (*models.Profile, error)
	// LockProfile takes a row lock on the profile until the surrounding
	// transaction ends. Backends without row locks treat it as a read.
	LockProfile(ctx context.Context, id string) error
}

type ClientRepository interface {
	CreateClient(ctx context.Context, c *models.Client) error
	GetClient(ctx context.Context, id string) (*models.Client, error)
	GetClientByProfile(ctx context.Context, profileID string) (*models.Client, error)
	ListClients(ctx context.Context, f ClientFilter) ([]models.Client, error)
	CountClients(ctx context.Context, f ClientFilter) (int64, error)
	UpdateClient(ctx context.Context, id string, patch map[string]interface{}) (*models.Client, error)
}

type SiteRepository interface {
	CreateSite(ctx context.Context, s *models.Site) error
	GetSite(ctx context.Context, id string) (*models.Site, error)
	ListSites(ctx context.Context, f SiteFilter) ([]models.Site, error)
	CountSites(ctx context.Context, f SiteFilter) (int64, error)
}

type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, id string) (*models.Assignment, error)
	ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error)
	CountAssignments(ctx context.Context, f AssignmentFilter) (int64, error)
	UpdateAssignment(ctx context.Context, id string, patch map[string]interface{}) (*models.Assignment, error)
}

type CheckInRepository interface {
	CreateCheckIn(ctx context.Context, c *models.CheckIn) error
	GetCheckIn(ctx context.Context, id string) (*models.CheckIn, error)
	ListCheckIns(ctx context.Context, f CheckInFilter) ([]models.CheckIn, error)
	CountCheckIns(ctx context.Context, f CheckInFilter) (int64, error)
	// CloseCheckIn sets the check-out time only while it is still unset.
	CloseCheckIn(ctx context.Context, id string, at time.Time) (*models.CheckIn, error)
}

type ReportRepository interface {
	CreateReport(ctx context.Context, r *models.DailyReport) error
	GetReport(ctx context.Context, id string) (*models.DailyReport, error)
	ListReports(ctx context.Context, f ReportFilter) ([]models.DailyReport, error)
	CountReports(ctx context.Context, f ReportFilter) (int64, error)
}

type LeaveRepository interface {
	CreateLeave(ctx context.Context, l *models.LeaveRequest) error
	GetLeave(ctx context.Context, id string) (*models.LeaveRequest, error)
	ListLeaves(ctx context.Context, f LeaveFilter) ([]models.LeaveRequest, error)
	CountLeaves(ctx context.Context, f LeaveFilter) (int64, error)
	// DecideLeave applies the decision only while the request is still pending.
	DecideLeave(ctx context.Context, id string, d models.LeaveDecision) (*models.LeaveRequest, error)
}

type CompanyProfileRepository interface {
	GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error)
	SaveCompanyProfile(ctx context.Context, cp *models.CompanyProfile) error
}

// Store is the persistence backend consumed by the services.
type Store interface {
	ProfileRepository
	ClientRepository
	SiteRepository
	AssignmentRepository
	CheckInRepository
	ReportRepository
	LeaveRepository
	CompanyProfileRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// An error returned by fn rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// Snapshot runs fn in a read-only repeatable-read transaction, so every
	// read inside fn sees the same committed state.
	Snapshot(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
