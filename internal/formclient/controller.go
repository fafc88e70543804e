package formclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/internal/composer"
	"github.com/laxmielectronics/site-api/internal/models"
	"github.com/laxmielectronics/site-api/pkg/logger"
)

// State is the lifecycle position of a form
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

const (
	// AlertFailed is shown when a submission could not be delivered
	AlertFailed = "Something went wrong. Please try again."
	// AlertSubmitted replaces the submit label after a successful relay
	AlertSubmitted = "Submitted!"

	DefaultResetDelay = 3 * time.Second
)

var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not settled
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrAwaitingReset is returned when Submit is called after a success and
	// before the form has reset
	ErrAwaitingReset = errors.New("form already submitted")

	// ErrSubmissionFailed is returned when the relay reports a failed delivery
	ErrSubmissionFailed = errors.New("submission failed")
)

// ValidationError carries the field errors found before any network call
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Sender delivers a composed message pair. *Client satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResult, error)
}

// Snapshot is a copy of the controller state safe to read without locking
type Snapshot struct {
	State       State
	Values      map[string]any
	FieldErrors []models.FieldError
	Alert       string
}

// Option configures a Controller
type Option func(*Controller)

// WithResetDelay sets how long a submitted form stays in StateSubmitted
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.resetDelay = d
	}
}

// Controller holds the values of one form instance and drives it through
// validation, composition and a single in-flight submission.
type Controller struct {
	formType   models.FormType
	composer   *composer.Composer
	sender     Sender
	resetDelay time.Duration

	mu          sync.Mutex
	state       State
	values      map[string]any
	fieldErrors []models.FieldError
	alert       string
	resetTimer  *time.Timer
}

// NewController creates an idle controller for formType
func NewController(formType models.FormType, c *composer.Composer, sender Sender, opts ...Option) (*Controller, error) {
	if models.NewFormSubmission(formType) == nil {
		return nil, fmt.Errorf("unknown form type %q", formType)
	}
	if c == nil || sender == nil {
		return nil, fmt.Errorf("composer and sender are required")
	}

	ctrl := &Controller{
		formType:   formType,
		composer:   c,
		sender:     sender,
		resetDelay: DefaultResetDelay,
		state:      StateIdle,
		values:     map[string]any{},
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl, nil
}

// SetField records a field value. Field names are the JSON names
// ("firstName", "cad_file"). Values are ignored while a submission is in
// flight so the payload being sent never changes underneath it.
func (c *Controller) SetField(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return
	}
	c.values[name] = value
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make(map[string]any, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	return Snapshot{
		State:       c.state,
		Values:      values,
		FieldErrors: append([]models.FieldError(nil), c.fieldErrors...),
		Alert:       c.alert,
	}
}

// Submit validates the current values, composes both notifications and
// sends them. Validation failures never reach the network. On delivery
// failure the values are kept and the alert is set; on success the form
// resets after the reset delay.
func (c *Controller) Submit(ctx context.Context) (*models.SubmissionResult, error) {
	req, err := c.begin()
	if err != nil {
		return nil, err
	}

	result, err := c.sender.SendEmail(ctx, req)
	if err == nil && (result == nil || !result.Success) {
		err = ErrSubmissionFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		logger.Warn("Form submission failed",
			zap.String("form_type", string(c.formType)),
			zap.Error(err))
		c.state = StateIdle
		c.alert = AlertFailed
		return result, err
	}

	logger.Info("Form submitted", zap.String("form_type", string(c.formType)))
	c.state = StateSubmitted
	c.alert = AlertSubmitted
	c.resetTimer = time.AfterFunc(c.resetDelay, c.reset)
	return result, nil
}

// begin moves the form from idle to submitting and builds the request. It
// holds the lock for the whole step so a concurrent Submit sees the form busy.
func (c *Controller) begin() (*models.SubmissionRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSubmitting, StateValidating:
		return nil, ErrSubmitInFlight
	case StateSubmitted:
		return nil, ErrAwaitingReset
	}

	c.state = StateValidating
	c.alert = ""
	c.fieldErrors = nil

	sub, err := c.decode()
	if err != nil {
		c.fieldErrors = []models.FieldError{{Field: "form", Message: err.Error()}}
		c.state = StateIdle
		return nil, &ValidationError{Fields: c.fieldErrors}
	}

	if fields := models.ValidateForm(sub); len(fields) > 0 {
		c.fieldErrors = fields
		c.state = StateIdle
		return nil, &ValidationError{Fields: fields}
	}

	admin, customer, err := c.composer.Compose(sub)
	if err != nil {
		c.state = StateIdle
		c.alert = AlertFailed
		return nil, err
	}

	c.state = StateSubmitting
	return &models.SubmissionRequest{
		AdminEmail:    admin,
		CustomerEmail: customer,
		Files:         fileMetadata(sub),
	}, nil
}

// decode maps the loosely typed field values onto the typed form
func (c *Controller) decode() (models.FormSubmission, error) {
	sub := models.NewFormSubmission(c.formType)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           sub,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(c.values); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSubmitted {
		return
	}
	c.state = StateIdle
	c.values = map[string]any{}
	c.fieldErrors = nil
	c.alert = ""
	c.resetTimer = nil
}

// Close stops a pending reset
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

func fileMetadata(sub models.FormSubmission) *models.FileMetadata {
	quote, ok := sub.(*models.QuoteForm)
	if !ok {
		return nil
	}
	return &models.FileMetadata{
		CADFile: optional(quote.CADFile),
		RFQFile: optional(quote.RFQFile),
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
