// Package mailer sends transactional notification email through SendGrid
// dynamic templates. Every send is best-effort: failures are logged by the
// caller and never retried or rolled into the surrounding operation.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer wraps the SendGrid client. A nil Mailer (or one built with an
// empty API key) silently drops every send, which keeps local development
// working without credentials.
type Mailer struct {
	client   *sendgrid.Client
	from     *mail.Email
	received string // template id: submission received
	status   string // template id: status update
}

// Config holds the mailer settings from app config.
type Config struct {
	APIKey             string
	FromAddress        string
	FromName           string
	ReceivedTemplateID string
	StatusTemplateID   string
}

// New builds a Mailer. Returns nil when no API key is configured.
func New(cfg Config) *Mailer {
	if cfg.APIKey == "" {
		return nil
	}
	return &Mailer{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		from:     mail.NewEmail(cfg.FromName, cfg.FromAddress),
		received: cfg.ReceivedTemplateID,
		status:   cfg.StatusTemplateID,
	}
}

// SendSubmissionReceived notifies a submitter that their form arrived.
func (m *Mailer) SendSubmissionReceived(ctx context.Context, to, userTag, formName string) error {
	if m == nil || to == "" {
		return nil
	}
	return m.send(ctx, to, m.received, map[string]any{
		"user": userTag,
		"form": formName,
	})
}

// SendStatusUpdate notifies a submitter that a reviewer resolved their
// submission. comment should already carry the "No comment provided."
// placeholder when the reviewer left none.
func (m *Mailer) SendStatusUpdate(ctx context.Context, to, userTag, formName, statusLabel, comment string) error {
	if m == nil || to == "" {
		return nil
	}
	return m.send(ctx, to, m.status, map[string]any{
		"user":    userTag,
		"form":    formName,
		"status":  statusLabel,
		"comment": comment,
	})
}

func (m *Mailer) send(ctx context.Context, to, templateID string, data map[string]any) error {
	if templateID == "" {
		return fmt.Errorf("mailer: no template id configured")
	}

	msg := mail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	for k, v := range data {
		p.SetDynamicTemplateData(k, v)
	}
	msg.AddPersonalizations(p)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mailer: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
