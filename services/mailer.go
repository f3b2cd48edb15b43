package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/site-engineer-app/events"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MailMessage is one outbound email, fully derived from a workflow event.
type MailMessage struct {
	Event       events.Type
	Subject     string
	To          []string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Delivery error codes.
const (
	MailErrorConnection  = "connection_failed"
	MailErrorAuth        = "auth_failed"
	MailErrorRecipient   = "recipient_rejected"
	MailErrorTimeout     = "timeout"
	MailErrorCircuitOpen = "circuit_open"
	MailErrorUnknown     = "unknown"
)

type DeliveryResult struct {
	Recipients  []string
	Success     bool
	ErrorCode   string
	IsTransient bool
	DeliveredAt *time.Time
}

// Mailer is the outbound mail transport.
type Mailer interface {
	Send(ctx context.Context, msg *MailMessage) (*DeliveryResult, error)
}

// LogMailer only logs messages. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg *MailMessage) (*DeliveryResult, error) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"event":       msg.Event,
		"to":          msg.To,
		"subject":     msg.Subject,
		"attachments": len(msg.Attachments),
	}).Info("Mail not sent (SMTP disabled)")

	now := time.Now()
	return &DeliveryResult{Recipients: msg.To, Success: true, DeliveredAt: &now}, nil
}
