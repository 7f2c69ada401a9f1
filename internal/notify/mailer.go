package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/ecoroute/ecoroute/internal/review"
)

// ErrNoRecipient is returned when no administrator address is configured.
var ErrNoRecipient = errors.New("admin e-mail address is not set")

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailerConfig holds configuration for the admin mailer.
type MailerConfig struct {
	// SMTPHost, SMTPPort, SMTPUsername and SMTPPassword configure the default dialer.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// From is the sender address.
	From string

	// FromName is the sender display name (default: "EcoRoute").
	FromName string

	// AdminEmail receives review notifications. Required.
	AdminEmail string

	// Sender overrides the SMTP dialer. Tests only.
	Sender Sender

	Logger zerolog.Logger
}

// Mailer e-mails the administrator about submitted reviews.
type Mailer struct {
	sender   Sender
	from     string
	fromName string
	to       string
	logger   zerolog.Logger
}

var _ review.Notifier = (*Mailer)(nil)

// NewMailer creates a new admin mailer.
func NewMailer(cfg MailerConfig) (*Mailer, error) {
	if cfg.AdminEmail == "" {
		return nil, ErrNoRecipient
	}
	sender := cfg.Sender
	if sender == nil {
		sender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "EcoRoute"
	}
	from := cfg.From
	if from == "" {
		from = cfg.AdminEmail
	}

	return &Mailer{
		sender:   sender,
		from:     from,
		fromName: fromName,
		to:       cfg.AdminEmail,
		logger:   cfg.Logger,
	}, nil
}

// ReviewSubmitted sends the administrator an e-mail about the review.
func (m *Mailer) ReviewSubmitted(_ context.Context, r review.Review) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", Subject(r))
	msg.SetBody("text/plain", Body(r))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send review e-mail: %w", err)
	}

	m.logger.Info().
		Str("review_id", r.ID).
		Str("to", m.to).
		Msg("review e-mail sent")
	return nil
}
