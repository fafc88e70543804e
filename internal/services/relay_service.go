package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/internal/mailer"
	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
	"github.com/laxmielectronics/site-api/pkg/logger"
	"github.com/laxmielectronics/site-api/pkg/metrics"
)

var (
	// ErrMissingEmails is returned when either top-level message is absent
	ErrMissingEmails = fmt.Errorf("%s: %w", models.MessageMissingEmails, apperrors.ErrInvalidInput)

	// ErrMissingAddresses is returned when a message has no recipient or subject
	ErrMissingAddresses = fmt.Errorf("%s: %w", models.MessageMissingAddresses, apperrors.ErrInvalidInput)
)

const (
	recipientAdmin    = "admin"
	recipientCustomer = "customer"
)

// RelayService sends the admin notification and the customer
// acknowledgment for one submission. Each message gets exactly one attempt;
// nothing is queued or retried.
type RelayService struct {
	transport mailer.Transport
}

// NewRelayService creates a new relay service instance
func NewRelayService(transport mailer.Transport) *RelayService {
	return &RelayService{transport: transport}
}

// Relay validates a pre-rendered SubmissionRequest and delivers both
// messages. Malformed requests return an error before any send.
func (s *RelayService) Relay(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResult, error) {
	if req == nil || req.AdminEmail == nil || req.CustomerEmail == nil {
		return nil, ErrMissingEmails
	}
	if !req.AdminEmail.HasRecipientAndSubject() || !req.CustomerEmail.HasRecipientAndSubject() {
		return nil, ErrMissingAddresses
	}

	admin, err := prepareAttachments(req.AdminEmail)
	if err != nil {
		return nil, err
	}
	customer, err := prepareAttachments(req.CustomerEmail)
	if err != nil {
		return nil, err
	}

	if req.Files != nil {
		logger.Info("Submission carries file metadata",
			zap.String("cad_file", derefOrEmpty(req.Files.CADFile)),
			zap.String("rfq_file", derefOrEmpty(req.Files.RFQFile)),
		)
	}

	return s.Deliver(ctx, admin, customer), nil
}

// Deliver sends both messages concurrently and waits for both to settle.
// Sends are detached from request cancellation and bounded by the
// transport timeout instead, so a client disconnect cannot cut one short.
func (s *RelayService) Deliver(ctx context.Context, admin, customer *models.EmailMessage) *models.SubmissionResult {
	sendCtx := context.WithoutCancel(ctx)

	var (
		wg              sync.WaitGroup
		adminOutcome    models.DeliveryOutcome
		customerOutcome models.DeliveryOutcome
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		adminOutcome = s.send(sendCtx, recipientAdmin, admin)
	}()
	go func() {
		defer wg.Done()
		customerOutcome = s.send(sendCtx, recipientCustomer, customer)
	}()
	wg.Wait()

	result := models.NewSubmissionResult(adminOutcome, customerOutcome)
	if !result.Success {
		logger.Warn("Submission relay incomplete",
			zap.Bool("admin_delivered", adminOutcome.Success),
			zap.Bool("customer_delivered", customerOutcome.Success),
		)
	}
	return result
}

func (s *RelayService) send(ctx context.Context, recipient string, msg *models.EmailMessage) models.DeliveryOutcome {
	outcome := s.transport.Send(ctx, msg)

	status := "success"
	if !outcome.Success {
		status = "error"
	}
	metrics.EmailDeliveries.WithLabelValues(recipient, s.transport.Name(), status).Inc()

	if outcome.Success {
		logger.Info("Email delivered",
			zap.String("recipient", recipient),
			zap.String("provider", s.transport.Name()),
			zap.String("message_id", outcome.MessageID),
		)
	} else {
		logger.Error("Email delivery failed",
			zap.String("recipient", recipient),
			zap.String("provider", s.transport.Name()),
			zap.String("error", outcome.Error),
		)
	}
	return outcome
}

// prepareAttachments returns a copy of msg whose inline attachments are
// decoded. Client-supplied paths are refused so callers cannot attach
// files from the server's disk.
func prepareAttachments(msg *models.EmailMessage) (*models.EmailMessage, error) {
	if len(msg.Attachments) == 0 {
		return msg, nil
	}

	prepared := *msg
	prepared.Attachments = make([]models.Attachment, len(msg.Attachments))
	for i, a := range msg.Attachments {
		if a.Path != "" {
			return nil, apperrors.InvalidInputError("attachments", fmt.Sprintf("%s: path attachments are not accepted", a.Filename))
		}
		if a.Filename == "" || a.Content == "" {
			return nil, apperrors.InternalError("attachment requires filename and content")
		}
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, apperrors.InternalError(fmt.Sprintf("attachment %s has invalid base64 content", a.Filename))
		}
		if a.ContentType != "" && !validContentType(a.ContentType) {
			return nil, apperrors.InternalError(fmt.Sprintf("attachment %s has invalid content type", a.Filename))
		}
		a.Data = data
		a.Content = ""
		prepared.Attachments[i] = a
	}
	return &prepared, nil
}

// validContentType accepts a single well-formed media type. The value is
// written verbatim into the MIME part header.
func validContentType(v string) bool {
	if strings.ContainsAny(v, "\r\n") {
		return false
	}
	_, _, err := mime.ParseMediaType(v)
	return err == nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
