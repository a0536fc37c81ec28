// Package mail sends account notifications. Bodies are rendered with hermes
// as HTML and plain text and delivered through Mailgun.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/logger"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Mailer sends the account emails.
type Mailer interface {
	SendWelcome(ctx context.Context, email string) error
	SendPasswordChanged(ctx context.Context, email string) error
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

const sendTimeout = 10 * time.Second

// Template names, also used as metric labels.
const (
	TemplateWelcome         = "welcome"
	TemplatePasswordChanged = "password_changed"
	TemplatePasswordReset   = "password_reset"
)

type MailgunMailer struct {
	mg       *mailgun.MailgunImpl
	from     string
	composer *Composer
	sent     *prometheus.CounterVec
}

// NewMailgunMailer creates a mailer for cfg. sent may be nil.
func NewMailgunMailer(cfg *config.Config, sent *prometheus.CounterVec) *MailgunMailer {
	mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunAPIBase != "" {
		mg.SetAPIBase(cfg.MailgunAPIBase)
	}
	return &MailgunMailer{
		mg:       mg,
		from:     cfg.MailFrom,
		composer: NewComposer(cfg.FrontendURL),
		sent:     sent,
	}
}

func (m *MailgunMailer) SendWelcome(ctx context.Context, email string) error {
	return m.send(ctx, TemplateWelcome, email, m.composer.Welcome(email))
}

func (m *MailgunMailer) SendPasswordChanged(ctx context.Context, email string) error {
	return m.send(ctx, TemplatePasswordChanged, email, m.composer.PasswordChanged(email))
}

func (m *MailgunMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	return m.send(ctx, TemplatePasswordReset, email, m.composer.PasswordReset(email, resetURL))
}

func (m *MailgunMailer) send(ctx context.Context, template, to string, msg Message) error {
	err := m.deliver(ctx, to, msg)
	if m.sent != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.sent.WithLabelValues(template, outcome).Inc()
	}
	if err != nil {
		logger.Log.Warn("failed to send mail", zap.String("template", template), zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send %s mail: %w", template, err)
	}
	logger.Log.Debug("mail sent", zap.String("template", template), zap.String("to", to))
	return nil
}

func (m *MailgunMailer) deliver(ctx context.Context, to string, msg Message) error {
	html, text, err := m.composer.Render(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := m.mg.NewMessage(m.from, msg.Subject, text, to)
	message.SetHtml(html)
	_, _, err = m.mg.Send(ctx, message)
	return err
}

// LogMailer is used when Mailgun is not configured. Every send fails so
// callers report the mail as not sent.
type LogMailer struct{}

var ErrMailDisabled = fmt.Errorf("mail delivery is not configured")

func (LogMailer) SendWelcome(_ context.Context, email string) error {
	logger.Log.Info("mail disabled, skipping welcome mail", zap.String("to", email))
	return ErrMailDisabled
}

func (LogMailer) SendPasswordChanged(_ context.Context, email string) error {
	logger.Log.Info("mail disabled, skipping password changed mail", zap.String("to", email))
	return ErrMailDisabled
}

func (LogMailer) SendPasswordReset(_ context.Context, email, _ string) error {
	logger.Log.Info("mail disabled, skipping password reset mail", zap.String("to", email))
	return ErrMailDisabled
}

// New returns a Mailgun mailer when configured and a LogMailer otherwise.
func New(cfg *config.Config, sent *prometheus.CounterVec) Mailer {
	if !cfg.MailEnabled() {
		logger.Log.Info("mailgun not configured, emails will not be sent")
		return LogMailer{}
	}
	return NewMailgunMailer(cfg, sent)
}
