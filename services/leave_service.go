package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/metrics"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type LeaveInput struct {
	// EngineerID is only honoured for staff filing on an engineer's behalf.
	EngineerID string
	LeaveType  models.LeaveType
	StartDate  string
	EndDate    string
	Reason     string
}

type LeaveService struct {
	workflow
	scope *ScopeService
}

func NewLeaveService(store repositories.Store, scope *ScopeService, publisher events.Publisher) *LeaveService {
	return &LeaveService{workflow: newWorkflow(store, publisher), scope: scope}
}

// Request files a pending leave request.
func (s *LeaveService) Request(ctx context.Context, caller models.Caller, in LeaveInput) (*models.LeaveView, error) {
	engineerID := caller.ProfileID
	switch {
	case caller.Role == models.RoleEngineer:
	case caller.Role.IsStaff():
		if _, err := s.requireEngineer(ctx, in.EngineerID, "engineerId"); err != nil {
			return nil, err
		}
		engineerID = in.EngineerID
	default:
		return nil, utils.ErrForbidden("only engineers can request leave")
	}

	if in.LeaveType == "" {
		in.LeaveType = models.LeaveTypeAnnual
	}
	if !in.LeaveType.Valid() {
		return nil, utils.ErrValidation("unknown leave type %q", in.LeaveType)
	}
	days, err := leaveDays(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, utils.ErrValidation("reason is required")
	}

	l := &models.LeaveRequest{
		EngineerID: engineerID,
		LeaveType:  in.LeaveType,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Days:       days,
		Reason:     reason,
		Status:     models.LeaveStatusPending,
	}
	if err := s.store.CreateLeave(ctx, l); err != nil {
		return nil, storeErr(err, "leave request")
	}
	utils.InfoLogger.Infof("Leave request %s created for engineer %s (%s..%s)", l.ID, engineerID, l.StartDate, l.EndDate)

	view, err := s.scope.GetLeave(ctx, caller, l.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.LeaveRequested, Actor: caller, Leave: view})
	return view, nil
}

// Approve moves a pending request to approved, optionally naming a backup engineer.
func (s *LeaveService) Approve(ctx context.Context, caller models.Caller, id string, backupEngineerID *string) (*models.LeaveView, error) {
	if err := requireStaff(caller, "approve leave requests"); err != nil {
		return nil, err
	}
	backupEngineerID = trimmedPtr(backupEngineerID)
	if backupEngineerID != nil {
		if _, err := s.requireEngineer(ctx, *backupEngineerID, "backupEngineerId"); err != nil {
			return nil, err
		}
		current, err := s.store.GetLeave(ctx, id)
		if err != nil {
			return nil, storeErr(err, "leave request")
		}
		if current.EngineerID == *backupEngineerID {
			return nil, utils.ErrValidation("backup engineer must differ from the requesting engineer")
		}
	}

	return s.decide(ctx, caller, id, models.LeaveDecision{
		Status:           models.LeaveStatusApproved,
		ApproverID:       caller.ProfileID,
		BackupEngineerID: backupEngineerID,
		DecidedAt:        s.now(),
	}, "leave_approve")
}

func (s *LeaveService) Reject(ctx context.Context, caller models.Caller, id string, reason *string) (*models.LeaveView, error) {
	if err := requireStaff(caller, "reject leave requests"); err != nil {
		return nil, err
	}
	return s.decide(ctx, caller, id, models.LeaveDecision{
		Status:       models.LeaveStatusRejected,
		ApproverID:   caller.ProfileID,
		RejectReason: trimmedPtr(reason),
		DecidedAt:    s.now(),
	}, "leave_reject")
}

func (s *LeaveService) decide(ctx context.Context, caller models.Caller, id string, d models.LeaveDecision, transition string) (*models.LeaveView, error) {
	_, err := s.store.DecideLeave(ctx, id, d)
	switch {
	case errors.Is(err, repositories.ErrPreconditionFailed):
		metrics.WorkflowTransitions.WithLabelValues(transition, "rejected").Inc()
		current, getErr := s.store.GetLeave(ctx, id)
		if getErr != nil {
			return nil, storeErr(getErr, "leave request")
		}
		return nil, utils.ErrInvalidStateTransition("leave request is already %s", current.Status)
	case err != nil:
		return nil, storeErr(err, "leave request")
	}
	metrics.WorkflowTransitions.WithLabelValues(transition, "applied").Inc()
	utils.InfoLogger.Infof("Leave request %s %s by %s", id, d.Status, caller.ProfileID)

	view, err := s.scope.GetLeave(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.LeaveDecided, Actor: caller, Leave: view})
	return view, nil
}

// leaveDays validates the range and returns its inclusive length in days.
func leaveDays(start, end string) (int, error) {
	from, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return 0, utils.ErrValidation("startDate must be YYYY-MM-DD")
	}
	to, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return 0, utils.ErrValidation("endDate must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return 0, utils.ErrValidation("endDate must not be before startDate")
	}
	return int(to.Sub(from).Hours()/24) + 1, nil
}
