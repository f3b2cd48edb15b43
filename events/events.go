// Package events carries workflow events from the services to their
// subscribers (mail notifications, realtime dashboards) after a write commits.
package events

import (
	"context"
	"time"

	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type Type string

const (
	CheckIn         Type = "check_in"
	CheckOut        Type = "check_out"
	ReportSubmitted Type = "report_submitted"
	ReportDelivery  Type = "report_delivery"
	LeaveRequested  Type = "leave_requested"
	LeaveDecided    Type = "leave_decided"
)

// Event is a committed workflow change. Only the payload matching Type is set.
type Event struct {
	Type  Type          `json:"type"`
	At    time.Time     `json:"at"`
	Actor models.Caller `json:"-"`

	CheckIn *models.CheckInView `json:"checkIn,omitempty"`
	Report  *models.ReportView  `json:"report,omitempty"`
	Leave   *models.LeaveView   `json:"leave,omitempty"`

	// ReportDelivery: the reports to attach and the explicit recipients.
	Reports    []models.ReportView `json:"-"`
	Recipients []string            `json:"-"`
	Note       string              `json:"-"`
}

// Publisher receives events. Publish must not block on I/O and has no way to
// fail the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event)

func (f PublisherFunc) Publish(ctx context.Context, e Event) {
	f(ctx, e)
}

// Bus fans an event out to every subscriber, isolating each one.
type Bus struct {
	subscribers []Publisher
}

func NewBus(subscribers ...Publisher) *Bus {
	return &Bus{subscribers: subscribers}
}

func (b *Bus) Subscribe(p Publisher) {
	b.subscribers = append(b.subscribers, p)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	for _, s := range b.subscribers {
		SafePublish(ctx, s, e)
	}
}

// SafePublish delivers e to p, turning a panic into a log line.
func SafePublish(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			utils.ErrorLogger.WithField("event", e.Type).Errorf("event subscriber panicked: %v", r)
		}
	}()
	p.Publish(ctx, e)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) {})
