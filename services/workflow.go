package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// workflow is shared by the command services: the store, the event sink
// notified after a write commits, and the clock.
type workflow struct {
	store     repositories.Store
	publisher events.Publisher
	now       func() time.Time
}

func newWorkflow(store repositories.Store, publisher events.Publisher) workflow {
	if publisher == nil {
		publisher = events.Discard
	}
	return workflow{store: store, publisher: publisher, now: time.Now}
}

// publish hands e to the publisher after the write has committed. Nothing the
// publisher does can change the outcome of the operation.
func (w workflow) publish(ctx context.Context, e events.Event) {
	if e.At.IsZero() {
		e.At = w.now()
	}
	// The request context ends with the response; subscribers outlive it.
	events.SafePublish(context.WithoutCancel(ctx), w.publisher, e)
}

func (w workflow) today() string {
	return w.now().Format(models.DateLayout)
}

func requireStaff(caller models.Caller, action string) error {
	if !caller.Role.IsStaff() {
		return utils.ErrForbidden("only admin or hr can " + action)
	}
	return nil
}

// requireEngineer checks that id names an engineer profile.
func (w workflow) requireEngineer(ctx context.Context, id, field string) (*models.Profile, error) {
	if id == "" {
		return nil, utils.ErrValidation("%s is required", field)
	}
	p, err := w.store.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.ErrValidation("%s does not exist", field)
		}
		return nil, utils.ErrInternal(err)
	}
	if p.Role != models.RoleEngineer {
		return nil, utils.ErrValidation("%s is not an engineer", field)
	}
	return p, nil
}

// requireSiteOf checks that siteID names a site of clientID.
func (w workflow) requireSiteOf(ctx context.Context, siteID, clientID string) error {
	site, err := w.store.GetSite(ctx, siteID)
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.ErrValidation("siteId does not exist")
	}
	if err != nil {
		return utils.ErrInternal(err)
	}
	if site.ClientID != clientID {
		return utils.ErrValidation("site does not belong to the client")
	}
	return nil
}

// trimmedPtr returns nil for nil or blank input.
func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
