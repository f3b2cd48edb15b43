package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/site-engineer-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a gorm connection (mysql, postgres or sqlite).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	// Unique-index violations must surface as gorm.ErrDuplicatedKey.
	db.Config.TranslateError = true
	return &GormStore{db: db}
}

// DB exposes the underlying connection for migrations and health checks.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Snapshot(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

// matchIDs restricts column to ids; a non-nil empty slice matches nothing.
func matchIDs(q *gorm.DB, column string, ids []string) *gorm.DB {
	if ids == nil {
		return q
	}
	if len(ids) == 0 {
		return q.Where("1 = 0")
	}
	return q.Where(column+" IN ?", ids)
}

func (s *GormStore) create(ctx context.Context, value interface{}) error {
	return translate(s.db.WithContext(ctx).Create(value).Error)
}

func (s *GormStore) get(ctx context.Context, dest interface{}, id string) error {
	return translate(s.db.WithContext(ctx).First(dest, "id = ?", id).Error)
}

// patch merges fields into one record and reloads it inside a transaction,
// so the lookup-merge-persist sequence is atomic for that row only.
func (s *GormStore) patch(ctx context.Context, dest interface{}, id string, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(dest, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if len(fields) > 0 {
			if err := tx.Model(dest).Where("id = ?", id).Updates(fields).Error; err != nil {
				return translate(err)
			}
		}
		return translate(tx.First(dest, "id = ?", id).Error)
	})
}

func (s *GormStore) count(ctx context.Context, model interface{}, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := scope(s.db.WithContext(ctx).Model(model)).Count(&n).Error
	return n, err
}

// ---------------------------------------------------------------- profiles

func (f ProfileFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Role != nil {
		q = q.Where("role = ?", *f.Role)
	}
	return matchIDs(q, "id", f.IDs)
}

func (s *GormStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	p.Email = models.NormalizeEmail(p.Email)
	return s.create(ctx, p)
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.get(ctx, &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) ListProfiles(ctx context.Context, f ProfileFilter) ([]models.Profile, error) {
	var out []models.Profile
	err := f.apply(s.db.WithContext(ctx)).Order("full_name ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountProfiles(ctx context.Context, f ProfileFilter) (int64, error) {
	return s.count(ctx, &models.Profile{}, f.apply)
}

func (s *GormStore) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) (*models.Profile, error) {
	var p models.Profile
	if err := s.patch(ctx, &p, id, fields); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) LockProfile(ctx context.Context, id string) error {
	var p models.Profile
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&p, "id = ?", id).Error
	return translate(err)
}

// ---------------------------------------------------------------- clients

func (f ClientFilter) apply(q *gorm.DB) *gorm.DB {
	return matchIDs(q, "id", f.IDs)
}

func (s *GormStore) CreateClient(ctx context.Context, c *models.Client) error {
	return s.create(ctx, c)
}

func (s *GormStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	if err := s.get(ctx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) GetClientByProfile(ctx context.Context, profileID string) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("created_at ASC").First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) ListClients(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	var out []models.Client
	if err := f.apply(s.db.WithContext(ctx)).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountClients(ctx context.Context, f ClientFilter) (int64, error) {
	return s.count(ctx, &models.Client{}, f.apply)
}

func (s *GormStore) UpdateClient(ctx context.Context, id string, fields map[string]interface{}) (*models.Client, error) {
	var c models.Client
	if err := s.patch(ctx, &c, id, fields); err != nil {
		return nil, err
	}
	return &c, nil
}

// ---------------------------------------------------------------- sites

func (f SiteFilter) apply(q *gorm.DB) *gorm.DB {
	q = matchIDs(q, "id", f.IDs)
	return matchIDs(q, "client_id", f.ClientIDs)
}

func (s *GormStore) CreateSite(ctx context.Context, site *models.Site) error {
	return s.create(ctx, site)
}

func (s *GormStore) GetSite(ctx context.Context, id string) (*models.Site, error) {
	var site models.Site
	if err := s.get(ctx, &site, id); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *GormStore) ListSites(ctx context.Context, f SiteFilter) ([]models.Site, error) {
	var out []models.Site
	if err := f.apply(s.db.WithContext(ctx)).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountSites(ctx context.Context, f SiteFilter) (int64, error) {
	return s.count(ctx, &models.Site{}, f.apply)
}

// ---------------------------------------------------------------- assignments

func (f AssignmentFilter) apply(q *gorm.DB) *gorm.DB {
	if f.EngineerID != "" {
		q = q.Where("engineer_id = ?", f.EngineerID)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	return q
}

func (s *GormStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	return s.create(ctx, a)
}

func (s *GormStore) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	var a models.Assignment
	if err := s.get(ctx, &a, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	var out []models.Assignment
	if err := f.apply(s.db.WithContext(ctx)).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountAssignments(ctx context.Context, f AssignmentFilter) (int64, error) {
	return s.count(ctx, &models.Assignment{}, f.apply)
}

func (s *GormStore) UpdateAssignment(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	var a models.Assignment
	if err := s.patch(ctx, &a, id, fields); err != nil {
		return nil, err
	}
	return &a, nil
}

// ---------------------------------------------------------------- check-ins

func (f CheckInFilter) apply(q *gorm.DB) *gorm.DB {
	q = matchIDs(q, "engineer_id", f.EngineerIDs)
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.OpenOnly {
		q = q.Where("check_out_time IS NULL")
	}
	return q
}

func (s *GormStore) CreateCheckIn(ctx context.Context, c *models.CheckIn) error {
	return s.create(ctx, c)
}

func (s *GormStore) GetCheckIn(ctx context.Context, id string) (*models.CheckIn, error) {
	var c models.CheckIn
	if err := s.get(ctx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) ListCheckIns(ctx context.Context, f CheckInFilter) ([]models.CheckIn, error) {
	var out []models.CheckIn
	if err := f.apply(s.db.WithContext(ctx)).Order("check_in_time DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountCheckIns(ctx context.Context, f CheckInFilter) (int64, error) {
	return s.count(ctx, &models.CheckIn{}, f.apply)
}

func (s *GormStore) CloseCheckIn(ctx context.Context, id string, at time.Time) (*models.CheckIn, error) {
	var c models.CheckIn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CheckIn{}).
			Where("id = ? AND check_out_time IS NULL", id).
			Update("check_out_time", at)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if res.RowsAffected == 0 {
			return ErrPreconditionFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ---------------------------------------------------------------- reports

func (f ReportFilter) apply(q *gorm.DB) *gorm.DB {
	if f.EngineerID != "" {
		q = q.Where("engineer_id = ?", f.EngineerID)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Date != "" {
		q = q.Where("report_date = ?", f.Date)
	}
	return q
}

func (s *GormStore) CreateReport(ctx context.Context, r *models.DailyReport) error {
	return s.create(ctx, r)
}

func (s *GormStore) GetReport(ctx context.Context, id string) (*models.DailyReport, error) {
	var r models.DailyReport
	if err := s.get(ctx, &r, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) ListReports(ctx context.Context, f ReportFilter) ([]models.DailyReport, error) {
	var out []models.DailyReport
	err := f.apply(s.db.WithContext(ctx)).
		Order("report_date DESC").
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountReports(ctx context.Context, f ReportFilter) (int64, error) {
	return s.count(ctx, &models.DailyReport{}, f.apply)
}

// ---------------------------------------------------------------- leave requests

func (f LeaveFilter) apply(q *gorm.DB) *gorm.DB {
	q = matchIDs(q, "engineer_id", f.EngineerIDs)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ActiveOn != "" {
		q = q.Where("start_date <= ? AND end_date >= ?", f.ActiveOn, f.ActiveOn)
	}
	return q
}

func (s *GormStore) CreateLeave(ctx context.Context, l *models.LeaveRequest) error {
	return s.create(ctx, l)
}

func (s *GormStore) GetLeave(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var l models.LeaveRequest
	if err := s.get(ctx, &l, id); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *GormStore) ListLeaves(ctx context.Context, f LeaveFilter) ([]models.LeaveRequest, error) {
	var out []models.LeaveRequest
	if err := f.apply(s.db.WithContext(ctx)).Order("start_date DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountLeaves(ctx context.Context, f LeaveFilter) (int64, error) {
	return s.count(ctx, &models.LeaveRequest{}, f.apply)
}

func (s *GormStore) DecideLeave(ctx context.Context, id string, d models.LeaveDecision) (*models.LeaveRequest, error) {
	var l models.LeaveRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LeaveRequest{}).
			Where("id = ? AND status = ?", id, models.LeaveStatusPending).
			Updates(map[string]interface{}{
				"status":             d.Status,
				"approver_id":        d.ApproverID,
				"backup_engineer_id": d.BackupEngineerID,
				"reject_reason":      d.RejectReason,
				"decided_at":         d.DecidedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&l, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if res.RowsAffected == 0 {
			return ErrPreconditionFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ---------------------------------------------------------------- company profile

func (s *GormStore) GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error) {
	var cp models.CompanyProfile
	if err := s.get(ctx, &cp, models.CompanyProfileID); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *GormStore) SaveCompanyProfile(ctx context.Context, cp *models.CompanyProfile) error {
	cp.ID = models.CompanyProfileID
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "phone", "email", "website", "logo_url", "updated_at"}),
	}).Create(cp).Error
	if err != nil {
		return fmt.Errorf("save company profile: %w", err)
	}
	return translate(s.db.WithContext(ctx).First(cp, "id = ?", models.CompanyProfileID).Error)
}
