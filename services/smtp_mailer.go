package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/yeremiapane/site-engineer-app/metrics"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	TLS      bool
}

// SMTPMailer delivers mail over SMTP. A circuit breaker stops dialing a
// failing server until it has had time to recover.
type SMTPMailer struct {
	settings SMTPSettings
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[*DeliveryResult]
}

func NewSMTPMailer(settings SMTPSettings) *SMTPMailer {
	m := &SMTPMailer{settings: settings, timeout: 30 * time.Second}
	m.breaker = gobreaker.NewCircuitBreaker[*DeliveryResult](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.MailCircuitState.Set(float64(to))
			utils.ErrorLogger.Errorf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg *MailMessage) (*DeliveryResult, error) {
	result, err := m.breaker.Execute(func() (*DeliveryResult, error) {
		if err := m.send(ctx, msg); err != nil {
			return nil, err
		}
		now := time.Now()
		return &DeliveryResult{Recipients: msg.To, Success: true, DeliveredAt: &now}, nil
	})
	if err != nil {
		code := classifyMailError(err)
		return &DeliveryResult{
			Recipients:  msg.To,
			ErrorCode:   code,
			IsTransient: code != MailErrorAuth && code != MailErrorRecipient,
		}, err
	}
	return result, nil
}

func (m *SMTPMailer) send(ctx context.Context, msg *MailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	body, err := buildMIMEMessage(m.settings.From, m.settings.FromName, msg, time.Now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.settings.Host, strconv.Itoa(m.settings.Port))
	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.settings.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if m.settings.TLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.settings.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if m.settings.User != "" && m.settings.Password != "" {
		auth := smtp.PlainAuth("", m.settings.User, m.settings.Password, m.settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.settings.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}
	// The message is accepted once Data is closed.
	_ = client.Quit()
	return nil
}

// buildMIMEMessage renders msg as multipart/mixed: a text/html alternative
// part followed by base64 attachments.
func buildMIMEMessage(from, fromName string, msg *MailMessage, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	fromHeader := from
	if fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", fromName), from)
	}

	mixed := multipart.NewWriter(&buf)
	headers := []string{
		"From: " + fromHeader,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", mixed.Boundary()),
	}
	var out bytes.Buffer
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")

	var altBuf bytes.Buffer
	alt := multipart.NewWriter(&altBuf)
	if err := writeQuotedPart(alt, "text/plain; charset=UTF-8", msg.Text); err != nil {
		return nil, err
	}
	if err := writeQuotedPart(alt, "text/html; charset=UTF-8", msg.HTML); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, a.Data); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

func writeQuotedPart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64Lines wraps encoded output at 76 characters per RFC 2045.
func writeBase64Lines(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func classifyMailError(err error) string {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return MailErrorCircuitOpen
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MailErrorTimeout
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "authentication"):
		return MailErrorAuth
	case strings.Contains(errStr, "connect"):
		return MailErrorConnection
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return MailErrorTimeout
	case strings.Contains(errStr, "recipient"):
		return MailErrorRecipient
	}
	return MailErrorUnknown
}
