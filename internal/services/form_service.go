package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/internal/composer"
	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
	"github.com/laxmielectronics/site-api/pkg/logger"
	"github.com/laxmielectronics/site-api/pkg/metrics"
	"github.com/laxmielectronics/site-api/pkg/storage"
)

// Upload is one file from a multipart form
type Upload struct {
	Field    string // cad_file or rfq_file
	Filename string
	Size     int64
	Content  io.Reader
}

// ValidationError carries the field errors of a rejected form
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("%s: %s", models.MessageValidationFailed, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// FormService handles typed form submissions: it validates, composes the
// two notifications server-side, forwards uploads to the admin copy and
// relays both messages.
type FormService struct {
	composer *composer.Composer
	relay    *RelayService
	store    storage.Store
	captcha  CaptchaVerifier
	maxBytes int64
}

// NewFormService creates a new form service instance. captcha may be nil.
func NewFormService(c *composer.Composer, relay *RelayService, store storage.Store, captcha CaptchaVerifier, maxBytes int64) *FormService {
	return &FormService{
		composer: c,
		relay:    relay,
		store:    store,
		captcha:  captcha,
		maxBytes: maxBytes,
	}
}

// Submit processes one submission. Validation and captcha failures are
// returned as errors before anything is staged or sent.
func (s *FormService) Submit(ctx context.Context, sub models.FormSubmission, uploads []Upload) (*models.SubmissionResult, error) {
	if sub == nil {
		return nil, apperrors.InvalidInputError("formType", models.MessageUnknownFormType)
	}
	formType := string(sub.Type())

	if fields := models.ValidateForm(sub); len(fields) > 0 {
		metrics.FormSubmissions.WithLabelValues(formType, "invalid").Inc()
		return nil, &ValidationError{Fields: fields}
	}

	if s.captcha != nil && s.captcha.Enabled() {
		if err := s.captcha.Verify(ctx, sub.CaptchaToken()); err != nil {
			metrics.FormSubmissions.WithLabelValues(formType, "captcha_failed").Inc()
			logger.Warn("ReCAPTCHA verification failed", zap.String("form_type", formType), zap.Error(err))
			if !errors.Is(err, apperrors.ErrCaptcha) {
				err = fmt.Errorf("%w: %w", apperrors.ErrCaptcha, err)
			}
			return nil, err
		}
	}

	if len(uploads) > 0 && s.store == nil {
		return nil, apperrors.NotConfiguredError("attachment storage")
	}
	for _, u := range uploads {
		if err := storage.ValidateUpload(u.Filename, u.Size, s.maxBytes); err != nil {
			metrics.FormSubmissions.WithLabelValues(formType, "invalid").Inc()
			return nil, err
		}
	}

	staged, err := s.stage(ctx, uploads)
	defer s.cleanup(ctx, staged)
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(formType, "error").Inc()
		return nil, err
	}
	recordFilenames(sub, staged)

	admin, customer, err := s.composer.Compose(sub)
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(formType, "error").Inc()
		return nil, err
	}

	if err := s.attach(ctx, admin, staged); err != nil {
		metrics.FormSubmissions.WithLabelValues(formType, "error").Inc()
		return nil, err
	}

	result := s.relay.Deliver(ctx, admin, customer)
	metrics.FormSubmissions.WithLabelValues(formType, metrics.StatusLabel(resultErr(result))).Inc()

	logger.Info("Form submission relayed",
		zap.String("form_type", formType),
		zap.Bool("success", result.Success),
		zap.Int("attachments", len(staged)),
	)
	return result, nil
}

type stagedUpload struct {
	field  string
	object *storage.Object
}

func (s *FormService) stage(ctx context.Context, uploads []Upload) ([]stagedUpload, error) {
	staged := make([]stagedUpload, 0, len(uploads))
	for _, u := range uploads {
		obj, err := s.store.Put(ctx, u.Filename, u.Content, u.Size)
		if err != nil {
			return staged, apperrors.InternalError(fmt.Sprintf("failed to stage %s: %v", u.Filename, err))
		}
		staged = append(staged, stagedUpload{field: u.Field, object: obj})
	}
	return staged, nil
}

func (s *FormService) attach(ctx context.Context, admin *models.EmailMessage, staged []stagedUpload) error {
	for _, st := range staged {
		data, err := s.read(ctx, st.object)
		if err != nil {
			return apperrors.InternalError(fmt.Sprintf("failed to read staged %s: %v", st.object.Filename, err))
		}
		admin.Attachments = append(admin.Attachments, models.Attachment{
			Filename:    st.object.Filename,
			ContentType: st.object.ContentType,
			Data:        data,
		})
	}
	return nil
}

func (s *FormService) read(ctx context.Context, obj *storage.Object) ([]byte, error) {
	rc, err := s.store.Open(ctx, obj.Key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := s.maxBytes
	if limit <= 0 {
		limit = obj.Size
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("staged file exceeds %d bytes", limit)
	}
	return data, nil
}

// cleanup removes staged files whatever the outcome of the relay
func (s *FormService) cleanup(ctx context.Context, staged []stagedUpload) {
	ctx = context.WithoutCancel(ctx)
	for _, st := range staged {
		if err := s.store.Delete(ctx, st.object.Key); err != nil {
			logger.Warn("Failed to delete staged attachment",
				zap.String("key", st.object.Key),
				zap.Error(err),
			)
		}
	}
}

// recordFilenames shows uploaded file names in the quote notification
func recordFilenames(sub models.FormSubmission, staged []stagedUpload) {
	quote, ok := sub.(*models.QuoteForm)
	if !ok {
		return
	}
	quote.CADFile, quote.RFQFile = "", ""
	for _, st := range staged {
		switch st.field {
		case "cad_file":
			quote.CADFile = st.object.Filename
		case "rfq_file":
			quote.RFQFile = st.object.Filename
		}
	}
}

func resultErr(result *models.SubmissionResult) error {
	if result.Success {
		return nil
	}
	return apperrors.ErrDeliveryFailed
}
