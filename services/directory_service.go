package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

const minPasswordLength = 8

type ProfileInput struct {
	Email       string
	FullName    string
	Role        string
	Password    string
	Phone       *string
	Designation *string
	// ClientID links a client-role profile to its client record.
	ClientID *string
}

type ProfilePatch struct {
	FullName    *string
	Phone       *string
	Designation *string
}

type ClientInput struct {
	Name          string
	ContactPerson string
	ContactEmail  string
	ProfileID     *string
}

type ClientPatch struct {
	Name          *string
	ContactPerson *string
	ContactEmail  *string
	ProfileID     *string
}

type SiteInput struct {
	ClientID string
	Name     string
	Location string
}

type AssignmentInput struct {
	EngineerID   string
	ClientID     string
	SiteID       *string
	AssignedDate string
	Active       *bool
}

type AssignmentPatch struct {
	Active *bool
	SiteID *string
}

type CompanyProfileInput struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
	LogoURL string
}

// DirectoryService owns the metadata writes: profiles, clients, sites,
// assignments and the company profile.
type DirectoryService struct {
	workflow
	hasher PasswordHasher
	scope  *ScopeService
}

func NewDirectoryService(store repositories.Store, hasher PasswordHasher, scope *ScopeService) *DirectoryService {
	return &DirectoryService{workflow: newWorkflow(store, nil), hasher: hasher, scope: scope}
}

// ---------------------------------------------------------------- profiles

func (s *DirectoryService) CreateProfile(ctx context.Context, caller models.Caller, in ProfileInput) (*models.Profile, error) {
	if err := requireStaff(caller, "create profiles"); err != nil {
		return nil, err
	}

	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, utils.ErrValidation("role must be one of admin, hr, engineer, client")
	}
	if caller.Role == models.RoleHR && role == models.RoleAdmin {
		return nil, utils.ErrForbidden("hr cannot create admin profiles")
	}
	email, err := validEmail(in.Email, "email")
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, utils.ErrValidation("fullName is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, utils.ErrValidation("password must be at least %d characters", minPasswordLength)
	}
	clientID := trimmedPtr(in.ClientID)
	if clientID != nil && role != models.RoleClient {
		return nil, utils.ErrValidation("clientId is only allowed for client profiles")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, utils.ErrInternal(err)
	}

	p := &models.Profile{
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
		Phone:        trimmedPtr(in.Phone),
		Designation:  trimmedPtr(in.Designation),
		ClientID:     clientID,
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if clientID != nil {
			if _, err := tx.GetClient(ctx, *clientID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return utils.ErrValidation("clientId does not exist")
				}
				return err
			}
		}
		if err := tx.CreateProfile(ctx, p); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return utils.ErrConflict("a profile with this email already exists")
			}
			return err
		}
		if clientID != nil {
			client, err := tx.GetClient(ctx, *clientID)
			if err != nil {
				return err
			}
			return linkClientProfile(ctx, tx, client, &p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "profile")
	}

	utils.InfoLogger.Infof("Profile %s created (role=%s) by %s", p.Email, p.Role, caller.ProfileID)
	return p, nil
}

// UpdateProfile edits display metadata. Staff may edit anyone, others only themselves.
func (s *DirectoryService) UpdateProfile(ctx context.Context, caller models.Caller, id string, in ProfilePatch) (*models.Profile, error) {
	if !caller.Role.IsStaff() && caller.ProfileID != id {
		return nil, utils.ErrNotFound("profile")
	}

	fields := map[string]interface{}{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, utils.ErrValidation("fullName must not be empty")
		}
		fields["full_name"] = name
	}
	if in.Phone != nil {
		fields["phone"] = trimmedPtr(in.Phone)
	}
	if in.Designation != nil {
		fields["designation"] = trimmedPtr(in.Designation)
	}

	p, err := s.store.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, storeErr(err, "profile")
	}
	return p, nil
}

// ---------------------------------------------------------------- clients

func (s *DirectoryService) CreateClient(ctx context.Context, caller models.Caller, in ClientInput) (*models.Client, error) {
	if err := requireStaff(caller, "create clients"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.ErrValidation("name is required")
	}
	contactEmail := ""
	if strings.TrimSpace(in.ContactEmail) != "" {
		email, err := validEmail(in.ContactEmail, "contactEmail")
		if err != nil {
			return nil, err
		}
		contactEmail = email
	}

	c := &models.Client{
		Name:          name,
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		ContactEmail:  contactEmail,
	}
	profileID := trimmedPtr(in.ProfileID)
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.CreateClient(ctx, c); err != nil {
			return err
		}
		if profileID != nil {
			return linkClientProfile(ctx, tx, c, profileID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "client")
	}
	utils.InfoLogger.Infof("Client %s (%s) created by %s", c.Name, c.ID, caller.ProfileID)
	return c, nil
}

func (s *DirectoryService) UpdateClient(ctx context.Context, caller models.Caller, id string, in ClientPatch) (*models.Client, error) {
	if err := requireStaff(caller, "edit clients"); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.ErrValidation("name must not be empty")
		}
		fields["name"] = name
	}
	if in.ContactPerson != nil {
		fields["contact_person"] = strings.TrimSpace(*in.ContactPerson)
	}
	if in.ContactEmail != nil {
		email := ""
		if strings.TrimSpace(*in.ContactEmail) != "" {
			var err error
			if email, err = validEmail(*in.ContactEmail, "contactEmail"); err != nil {
				return nil, err
			}
		}
		fields["contact_email"] = email
	}
	// A present but blank profileId removes the link.
	relink := in.ProfileID != nil
	profileID := trimmedPtr(in.ProfileID)

	var out *models.Client
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		if out, err = tx.UpdateClient(ctx, id, fields); err != nil {
			return err
		}
		if relink {
			return linkClientProfile(ctx, tx, out, profileID)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "client")
	}
	return out, nil
}

// linkClientProfile points client at profileID, or unlinks it when profileID
// is nil, and keeps profiles.client_id in step on both the old and new profile.
// A client profile belongs to at most one client.
func linkClientProfile(ctx context.Context, tx repositories.Store, client *models.Client, profileID *string) error {
	if profileID != nil {
		if err := requireClientProfile(ctx, tx, *profileID); err != nil {
			return err
		}
		other, err := tx.GetClientByProfile(ctx, *profileID)
		switch {
		case err == nil && other.ID != client.ID:
			return utils.ErrConflict("profile is already linked to client " + other.Name)
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return err
		}
	}

	if prev := client.ProfileID; prev != nil && (profileID == nil || *prev != *profileID) {
		_, err := tx.UpdateProfile(ctx, *prev, map[string]interface{}{"client_id": nil})
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
	}

	updated, err := tx.UpdateClient(ctx, client.ID, map[string]interface{}{"profile_id": profileID})
	if err != nil {
		return err
	}
	*client = *updated
	if profileID == nil {
		return nil
	}
	_, err = tx.UpdateProfile(ctx, *profileID, map[string]interface{}{"client_id": client.ID})
	return err
}

func requireClientProfile(ctx context.Context, store repositories.Store, profileID string) error {
	p, err := store.GetProfile(ctx, profileID)
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.ErrValidation("profileId does not exist")
	}
	if err != nil {
		return err
	}
	if p.Role != models.RoleClient {
		return utils.ErrValidation("profileId must reference a client profile")
	}
	return nil
}

// ---------------------------------------------------------------- sites

func (s *DirectoryService) CreateSite(ctx context.Context, caller models.Caller, in SiteInput) (*models.SiteView, error) {
	if err := requireStaff(caller, "create sites"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.ClientID == "" {
		return nil, utils.ErrValidation("clientId and name are required")
	}
	client, err := s.store.GetClient(ctx, in.ClientID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.ErrValidation("clientId does not exist")
	}
	if err != nil {
		return nil, utils.ErrInternal(err)
	}

	site := &models.Site{ClientID: client.ID, Name: name, Location: strings.TrimSpace(in.Location)}
	if err := s.store.CreateSite(ctx, site); err != nil {
		return nil, storeErr(err, "site")
	}
	return &models.SiteView{Site: *site, ClientName: client.Name}, nil
}

// ---------------------------------------------------------------- assignments

func (s *DirectoryService) CreateAssignment(ctx context.Context, caller models.Caller, in AssignmentInput) (*models.AssignmentView, error) {
	if err := requireStaff(caller, "create assignments"); err != nil {
		return nil, err
	}
	if _, err := s.requireEngineer(ctx, in.EngineerID, "engineerId"); err != nil {
		return nil, err
	}
	if in.ClientID == "" {
		return nil, utils.ErrValidation("clientId is required")
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
	if in.AssignedDate == "" {
		in.AssignedDate = s.today()
	}
	if !models.ValidDate(in.AssignedDate) {
		return nil, utils.ErrValidation("assignedDate must be YYYY-MM-DD")
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	a := &models.Assignment{
		EngineerID:   in.EngineerID,
		ClientID:     in.ClientID,
		SiteID:       siteID,
		Active:       active,
		AssignedDate: in.AssignedDate,
	}
	if err := s.store.CreateAssignment(ctx, a); err != nil {
		return nil, storeErr(err, "assignment")
	}
	utils.InfoLogger.Infof("Engineer %s assigned to client %s by %s", a.EngineerID, a.ClientID, caller.ProfileID)
	return s.scope.GetAssignment(ctx, caller, a.ID)
}

func (s *DirectoryService) UpdateAssignment(ctx context.Context, caller models.Caller, id string, in AssignmentPatch) (*models.AssignmentView, error) {
	if err := requireStaff(caller, "edit assignments"); err != nil {
		return nil, err
	}
	current, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, storeErr(err, "assignment")
	}

	fields := map[string]interface{}{}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if in.SiteID != nil {
		siteID := trimmedPtr(in.SiteID)
		if siteID != nil {
			if err := s.requireSiteOf(ctx, *siteID, current.ClientID); err != nil {
				return nil, err
			}
		}
		fields["site_id"] = siteID
	}

	if _, err := s.store.UpdateAssignment(ctx, id, fields); err != nil {
		return nil, storeErr(err, "assignment")
	}
	return s.scope.GetAssignment(ctx, caller, id)
}

// ---------------------------------------------------------------- company profile

// GetCompanyProfile returns the branding record, or an empty one before it is first saved.
func (s *DirectoryService) GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error) {
	cp, err := s.store.GetCompanyProfile(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.CompanyProfile{ID: models.CompanyProfileID}, nil
	}
	if err != nil {
		return nil, utils.ErrInternal(err)
	}
	return cp, nil
}

func (s *DirectoryService) SaveCompanyProfile(ctx context.Context, caller models.Caller, in CompanyProfileInput) (*models.CompanyProfile, error) {
	if err := requireStaff(caller, "edit the company profile"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.ErrValidation("name is required")
	}
	email := ""
	if strings.TrimSpace(in.Email) != "" {
		var err error
		if email, err = validEmail(in.Email, "email"); err != nil {
			return nil, err
		}
	}

	cp := &models.CompanyProfile{
		Name:    name,
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   email,
		Website: strings.TrimSpace(in.Website),
		LogoURL: strings.TrimSpace(in.LogoURL),
	}
	if err := s.store.SaveCompanyProfile(ctx, cp); err != nil {
		return nil, utils.ErrInternal(err)
	}
	return cp, nil
}

func validEmail(raw, field string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", utils.ErrValidation("%s must be a valid email address", field)
	}
	return models.NormalizeEmail(addr.Address), nil
}
