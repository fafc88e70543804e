// Package mailer is the email transport adapter. Concrete providers (SMTP,
// SES, log) implement Deliverer; Adapter wraps one of them and turns every
// failure, including timeouts and panics, into a DeliveryOutcome.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
	"github.com/laxmielectronics/site-api/pkg/logger"
	"github.com/laxmielectronics/site-api/pkg/metrics"
	"github.com/laxmielectronics/site-api/pkg/tracing"
)

// DefaultSendTimeout bounds a single message when no timeout is configured
const DefaultSendTimeout = 10 * time.Second

// Transport sends one message per call and never returns a Go error for a
// failed delivery.
type Transport interface {
	Send(ctx context.Context, msg *models.EmailMessage) models.DeliveryOutcome
	Verify(ctx context.Context) error
	Name() string
}

// Deliverer is implemented by each provider. Deliver makes exactly one
// attempt and returns the provider message id.
type Deliverer interface {
	Deliver(ctx context.Context, msg *models.EmailMessage) (string, error)
	Verify(ctx context.Context) error
	Name() string
}

// Adapter applies the send timeout, metrics, logging and tracing around a Deliverer
type Adapter struct {
	deliverer Deliverer
	timeout   time.Duration
}

// NewAdapter wraps d. A non-positive timeout falls back to DefaultSendTimeout.
func NewAdapter(d Deliverer, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Adapter{deliverer: d, timeout: timeout}
}

// New builds the adapter for the configured provider
func New(ctx context.Context, cfg *config.Config) (*Adapter, error) {
	from := Sender{Name: cfg.SMTP.FromName, Address: cfg.SMTP.FromEmail}

	var d Deliverer
	switch cfg.Email.Provider {
	case "smtp", "":
		d = NewSMTPTransport(cfg.SMTP)
	case "ses":
		ses, err := NewSESTransport(ctx, cfg.SES, from)
		if err != nil {
			return nil, err
		}
		d = ses
	case "log":
		d = NewLogTransport(from)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}

	logger.Info("Email transport initialized",
		zap.String("provider", d.Name()),
		zap.Duration("send_timeout", cfg.Email.SendTimeout),
	)

	return NewAdapter(d, cfg.Email.SendTimeout), nil
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return a.deliverer.Name()
}

type deliveryResult struct {
	messageID string
	err       error
}

// Send delivers msg once. The outcome is a failure when the provider errors,
// the timeout expires, ctx is cancelled, or the provider panics.
func (a *Adapter) Send(ctx context.Context, msg *models.EmailMessage) models.DeliveryOutcome {
	provider := a.deliverer.Name()
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "mailer.send", attribute.String("mail.provider", provider))

	var (
		messageID string
		err       error
	)
	defer func() {
		duration := metrics.MeasureDuration(start)
		status := metrics.StatusLabel(err)
		metrics.EmailDeliveryDuration.WithLabelValues(provider, status).Observe(duration)

		fields := []zap.Field{zap.String("subject", subjectOf(msg))}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.String("message_id", messageID))
		}
		logger.LogAPICall(ctx, provider, "send", status, duration, fields...)
		tracing.EndSpan(span, err)
	}()

	if !msg.HasRecipientAndSubject() {
		err = apperrors.InvalidInputError("message", "recipient and subject are required")
		return models.DeliveryFailed(err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan deliveryResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- deliveryResult{err: fmt.Errorf("%s transport panic: %v", provider, r)}
			}
		}()
		id, deliverErr := a.deliverer.Deliver(sendCtx, msg)
		done <- deliveryResult{messageID: id, err: deliverErr}
	}()

	select {
	case res := <-done:
		messageID, err = res.messageID, res.err
		if err != nil && errors.Is(sendCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", apperrors.TimeoutError("send", a.timeout), err)
		}
	case <-sendCtx.Done():
		if ctx.Err() != nil {
			err = fmt.Errorf("send cancelled: %w", ctx.Err())
		} else {
			err = apperrors.TimeoutError("send", a.timeout)
		}
	}

	if err != nil {
		return models.DeliveryFailed(err)
	}
	return models.Delivered(messageID)
}

// Verify checks provider connectivity. It is a diagnostic and is not used
// on the request path.
func (a *Adapter) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	err := a.deliverer.Verify(ctx)
	logger.LogAPICall(ctx, a.deliverer.Name(), "verify", metrics.StatusLabel(err), metrics.MeasureDuration(start))
	return err
}

func subjectOf(msg *models.EmailMessage) string {
	if msg == nil {
		return ""
	}
	return msg.Subject
}

var _ Transport = (*Adapter)(nil)
