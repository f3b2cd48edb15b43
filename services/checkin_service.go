package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/metrics"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type CheckInInput struct {
	Latitude     *float64
	Longitude    *float64
	LocationName *string
}

func (in CheckInInput) validate() error {
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return utils.ErrValidation("latitude and longitude must be given together")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return utils.ErrValidation("latitude must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return utils.ErrValidation("longitude must be between -180 and 180")
	}
	return nil
}

func errAlreadyCheckedIn() error {
	return utils.ErrValidation("already checked in; check out first")
}

type CheckInService struct {
	workflow
	scope *ScopeService
}

func NewCheckInService(store repositories.Store, scope *ScopeService, publisher events.Publisher) *CheckInService {
	return &CheckInService{workflow: newWorkflow(store, publisher), scope: scope}
}

// CheckIn opens a check-in for the calling engineer. An engineer holds at
// most one open check-in at a time.
func (s *CheckInService) CheckIn(ctx context.Context, caller models.Caller, in CheckInInput) (*models.CheckInView, error) {
	if caller.Role != models.RoleEngineer {
		return nil, utils.ErrForbidden("only engineers can check in")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.CheckIn{
		EngineerID:   caller.ProfileID,
		CheckInTime:  now,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		LocationName: trimmedPtr(in.LocationName),
		Date:         now.Format(models.DateLayout),
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		// Serializes concurrent check-ins of one engineer on the profile row.
		if err := tx.LockProfile(ctx, caller.ProfileID); err != nil {
			return err
		}
		open, err := tx.CountCheckIns(ctx, repositories.CheckInFilter{EngineerIDs: []string{caller.ProfileID}, OpenOnly: true})
		if err != nil {
			return err
		}
		if open > 0 {
			return errAlreadyCheckedIn()
		}
		if err := tx.CreateCheckIn(ctx, c); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return errAlreadyCheckedIn()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "check-in")
	}
	utils.InfoLogger.Infof("Engineer %s checked in (%s)", caller.ProfileID, c.ID)

	view := &models.CheckInView{CheckIn: *c, EngineerName: caller.FullName}
	s.publish(ctx, events.Event{Type: events.CheckIn, Actor: caller, CheckIn: view})
	return view, nil
}

// CheckOut closes a check-in exactly once. Engineers may close only their own.
func (s *CheckInService) CheckOut(ctx context.Context, caller models.Caller, id string) (*models.CheckInView, error) {
	if caller.Role == models.RoleClient {
		return nil, utils.ErrForbidden("clients cannot check out")
	}

	current, err := s.store.GetCheckIn(ctx, id)
	if err != nil {
		return nil, storeErr(err, "check-in")
	}
	if caller.Role == models.RoleEngineer && current.EngineerID != caller.ProfileID {
		return nil, utils.ErrNotFound("check-in")
	}

	at := s.now()
	if at.Before(current.CheckInTime) {
		at = current.CheckInTime
	}

	closed, err := s.store.CloseCheckIn(ctx, id, at)
	if errors.Is(err, repositories.ErrPreconditionFailed) {
		metrics.WorkflowTransitions.WithLabelValues("checkout", "rejected").Inc()
		return nil, utils.ErrAlreadyCheckedOut()
	}
	if err != nil {
		return nil, storeErr(err, "check-in")
	}
	metrics.WorkflowTransitions.WithLabelValues("checkout", "applied").Inc()
	utils.InfoLogger.Infof("Check-in %s closed by %s", id, caller.ProfileID)

	views, err := checkInViews(ctx, s.store, []models.CheckIn{*closed})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.CheckOut, Actor: caller, CheckIn: &views[0]})
	return &views[0], nil
}
