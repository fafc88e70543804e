package mailer

import (
	"context"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

// smtpClient is the subset of *mail.Client the transport uses
type smtpClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
	DialWithContext(ctx context.Context) error
	Close() error
}

// SMTPTransport delivers through an authenticated SMTP relay. Missing
// credentials are reported per send rather than at startup, so the
// service boots without SMTP settings and health checks still pass.
type SMTPTransport struct {
	cfg       config.SMTPConfig
	newClient func(cfg config.SMTPConfig) (smtpClient, error)
}

// NewSMTPTransport creates an SMTP transport
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, newClient: dialClient}
}

// Name returns the provider name
func (t *SMTPTransport) Name() string {
	return "smtp"
}

// Deliver opens a connection, sends msg once and closes it
func (t *SMTPTransport) Deliver(ctx context.Context, msg *models.EmailMessage) (string, error) {
	if missing := t.cfg.Missing(); len(missing) > 0 {
		return "", apperrors.NotConfiguredError("smtp transport", missing...)
	}

	m, messageID, err := buildMessage(t.sender(), msg)
	if err != nil {
		return "", err
	}

	client, err := t.newClient(t.cfg)
	if err != nil {
		return "", apperrors.DeliveryError(t.Name(), err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", apperrors.DeliveryError(t.Name(), err)
	}

	return messageID, nil
}

// Verify dials the relay and authenticates without sending anything
func (t *SMTPTransport) Verify(ctx context.Context) error {
	if missing := t.cfg.Missing(); len(missing) > 0 {
		return apperrors.NotConfiguredError("smtp transport", missing...)
	}

	client, err := t.newClient(t.cfg)
	if err != nil {
		return apperrors.DeliveryError(t.Name(), err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return apperrors.DeliveryError(t.Name(), err)
	}
	return client.Close()
}

func (t *SMTPTransport) sender() Sender {
	address := t.cfg.FromEmail
	if address == "" {
		address = t.cfg.User
	}
	return Sender{Name: t.cfg.FromName, Address: address}
}

func dialClient(cfg config.SMTPConfig) (smtpClient, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(30 * time.Second),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}
