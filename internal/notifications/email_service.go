package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"srsevents/pkg/logger"
)

// EmailSender renders and delivers one notification message.
type EmailSender interface {
	Send(ctx context.Context, message *Message) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type smtpSender struct {
	config    *SMTPConfig
	templates map[string]*template.Template
}

func NewSMTPSender(config *SMTPConfig) (EmailSender, error) {
	if config.Host == "" || config.FromEmail == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}

	s := &smtpSender{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s, nil
}

func (s *smtpSender) loadTemplates() {
	for name, body := range map[string]string{
		"booking_confirmed":   bookingConfirmedTemplate,
		"booking_cancelled":   bookingCancelledTemplate,
		"sponsorship_pending": sponsorshipPendingTemplate,
		"generic":             genericTemplate,
	} {
		s.templates[name] = template.Must(template.New(name).Parse(body))
	}
}

func (s *smtpSender) Send(ctx context.Context, message *Message) error {
	tmpl, ok := s.templates[message.TemplateName()]
	if !ok {
		tmpl = s.templates["generic"]
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, message.TemplateData); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.FromName, s.config.FromEmail,
		message.RecipientEmail, message.Subject, body.String())

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{message.RecipientEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	now := time.Now()
	message.Status = StatusSent
	message.SentAt = &now
	return nil
}

// logSender is the development fallback when SMTP is not configured: it
// logs what would have been sent instead of mailing it.
type logSender struct{}

func NewLogSender() EmailSender {
	return logSender{}
}

func (logSender) Send(ctx context.Context, message *Message) error {
	logger.Info("email (log only)",
		"to", message.RecipientEmail,
		"subject", message.Subject,
		"type", string(message.Type),
	)
	return nil
}

const bookingConfirmedTemplate = `
<html><body>
<h2>Booking Confirmed</h2>
<p>Dear {{.Name}},</p>
<p>Your booking <strong>{{.BookingID}}</strong> for <strong>{{.EventTitle}}</strong> is confirmed.</p>
<p>Seats: {{.SeatCount}} &middot; Amount paid: ₹{{.Amount}}</p>
<p>Show the QR code in your account at the venue. It admits {{.SeatCount}} people.</p>
</body></html>`

const bookingCancelledTemplate = `
<html><body>
<h2>Booking Cancelled</h2>
<p>Dear {{.Name}},</p>
<p>Your booking <strong>{{.BookingID}}</strong> for <strong>{{.EventTitle}}</strong> has been cancelled.</p>
{{if .RefundAmount}}<p>A refund of ₹{{.RefundAmount}} is being processed.</p>{{end}}
</body></html>`

const sponsorshipPendingTemplate = `
<html><body>
<h2>Guest Approval Requested</h2>
<p>Dear {{.Name}},</p>
<p>{{.GuestName}} has requested your sponsorship for <strong>{{.EventTitle}}</strong> (booking {{.BookingID}}).</p>
<p>Please approve or reject the request from your account.</p>
</body></html>`

const genericTemplate = `
<html><body>
<p>Dear {{.Name}},</p>
<p>{{.Body}}</p>
</body></html>`
