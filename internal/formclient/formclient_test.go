package formclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxmielectronics/site-api/internal/composer"
	"github.com/laxmielectronics/site-api/internal/formclient"
	"github.com/laxmielectronics/site-api/internal/handlers"
	"github.com/laxmielectronics/site-api/internal/models"
	"github.com/laxmielectronics/site-api/internal/services"
	"github.com/laxmielectronics/site-api/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubTransport records sends and fails messages addressed to failTo. When
// gate is set every send blocks until it is closed.
type stubTransport struct {
	mu     sync.Mutex
	sent   []*models.EmailMessage
	failTo string
	gate   chan struct{}
}

func (s *stubTransport) Send(_ context.Context, msg *models.EmailMessage) models.DeliveryOutcome {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	if msg.To == s.failTo {
		return models.DeliveryFailed(errors.New("550 mailbox unavailable"))
	}
	return models.Delivered("<id@laxmi.example>")
}

func (s *stubTransport) Verify(context.Context) error { return nil }

func (s *stubTransport) Name() string { return "stub" }

func (s *stubTransport) sentCount() int {
	return len(s.messages())
}

func (s *stubTransport) messages() []*models.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.EmailMessage(nil), s.sent...)
}

func testComposer() *composer.Composer {
	return composer.New(composer.Config{AdminEmail: "sales@laxmi.example", CompanyName: "Laxmi Electronics"})
}

// newTestServer serves the relay endpoints and counts every request
func newTestServer(t *testing.T, transport *stubTransport) (*httptest.Server, *int32) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	relay := services.NewRelayService(transport)
	forms := services.NewFormService(testComposer(), relay, store, nil, 1<<20)

	var requests int32
	router := gin.New()
	router.Use(func(c *gin.Context) {
		atomic.AddInt32(&requests, 1)
		c.Next()
	})
	api := router.Group("/api")
	api.GET("/health", handlers.NewHealthHandler().Healthcheck)
	api.POST("/send-email", handlers.NewEmailHandler(relay).SendEmail)
	api.POST("/v1/forms/:formType", handlers.NewFormHandler(forms).Submit)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, &requests
}

func quoteValues() map[string]any {
	return map[string]any{
		"name":     "Jane Doe",
		"email":    "jane@example.com",
		"phone":    9876543210,
		"message":  "Need a quote for LSR parts",
		"rfq_file": "rfq.pdf",
	}
}

func newQuoteController(t *testing.T, server *httptest.Server, opts ...formclient.Option) *formclient.Controller {
	t.Helper()
	ctrl, err := formclient.NewController(models.FormTypeQuote, testComposer(), formclient.NewClient(server.URL, nil), opts...)
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	for k, v := range quoteValues() {
		ctrl.SetField(k, v)
	}
	return ctrl
}

func TestClient_Health(t *testing.T) {
	server, _ := newTestServer(t, &stubTransport{})

	health, err := formclient.NewClient(server.URL+"/", nil).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "Server is running", health.Message)
}

func TestClient_SendEmail_PartialFailure(t *testing.T) {
	server, _ := newTestServer(t, &stubTransport{failTo: "jane@example.com"})

	result, err := formclient.NewClient(server.URL, nil).SendEmail(context.Background(), &models.SubmissionRequest{
		AdminEmail:    &models.EmailMessage{To: "sales@laxmi.example", Subject: "New", HTML: "<p>a</p>"},
		CustomerEmail: &models.EmailMessage{To: "jane@example.com", Subject: "Thanks", HTML: "<p>c</p>"},
	})

	var statusErr *formclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.True(t, result.AdminEmail.Success)
	assert.Equal(t, "550 mailbox unavailable", result.CustomerEmail.Error)
}

func TestClient_SendEmail_MissingEmails(t *testing.T) {
	server, _ := newTestServer(t, &stubTransport{})

	_, err := formclient.NewClient(server.URL, nil).SendEmail(context.Background(), &models.SubmissionRequest{})

	var statusErr *formclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, models.MessageMissingEmails, statusErr.Message)
}

func TestClient_SubmitForm(t *testing.T) {
	transport := &stubTransport{}
	server, _ := newTestServer(t, transport)

	result, err := formclient.NewClient(server.URL, nil).SubmitForm(context.Background(), &models.CertificationForm{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Organization: "Acme Medical",
		City:         "Pune",
		State:        "Maharashtra",
		Certificate:  "ISO 13485",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, transport.sentCount())
}

func TestController_ValidationFailureMakesNoRequest(t *testing.T) {
	server, requests := newTestServer(t, &stubTransport{})
	ctrl := newQuoteController(t, server)
	ctrl.SetField("email", "not-an-email")

	_, err := ctrl.Submit(context.Background())

	var validationErr *formclient.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "email", validationErr.Fields[0].Field)
	assert.Equal(t, int32(0), atomic.LoadInt32(requests))

	snap := ctrl.Snapshot()
	assert.Equal(t, formclient.StateIdle, snap.State)
	assert.Len(t, snap.FieldErrors, 1)
	assert.Equal(t, "not-an-email", snap.Values["email"])
}

func TestController_SuccessThenReset(t *testing.T) {
	transport := &stubTransport{}
	server, _ := newTestServer(t, transport)
	ctrl := newQuoteController(t, server, formclient.WithResetDelay(20*time.Millisecond))

	result, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)

	snap := ctrl.Snapshot()
	assert.Equal(t, formclient.StateSubmitted, snap.State)
	assert.Equal(t, formclient.AlertSubmitted, snap.Alert)

	// phone arrived as a number and was decoded into the string field
	sent := transport.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].HTML+sent[1].HTML, "9876543210")

	assert.Eventually(t, func() bool {
		s := ctrl.Snapshot()
		return s.State == formclient.StateIdle && len(s.Values) == 0 && s.Alert == ""
	}, time.Second, 5*time.Millisecond)
}

func TestController_SubmitBeforeResetIsRejected(t *testing.T) {
	server, _ := newTestServer(t, &stubTransport{})
	ctrl := newQuoteController(t, server, formclient.WithResetDelay(time.Hour))

	_, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	_, err = ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, formclient.ErrAwaitingReset)
}

func TestController_FailureKeepsValues(t *testing.T) {
	server, _ := newTestServer(t, &stubTransport{failTo: "jane@example.com"})
	ctrl := newQuoteController(t, server)
	ctrl.SetField("phone", "")

	result, err := ctrl.Submit(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.True(t, result.AdminEmail.Success)
	assert.False(t, result.CustomerEmail.Success)
	assert.Equal(t, "550 mailbox unavailable", result.CustomerEmail.Error)

	snap := ctrl.Snapshot()
	assert.Equal(t, formclient.StateIdle, snap.State)
	assert.Equal(t, formclient.AlertFailed, snap.Alert)
	assert.Equal(t, "Jane Doe", snap.Values["name"])
	assert.Equal(t, "Need a quote for LSR parts", snap.Values["message"])
}

func TestController_QuoteSubjects(t *testing.T) {
	transport := &stubTransport{}
	server, _ := newTestServer(t, transport)
	ctrl := newQuoteController(t, server, formclient.WithResetDelay(time.Hour))
	ctrl.SetField("phone", "")

	result, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)

	subjects := map[string]string{}
	for _, msg := range transport.messages() {
		subjects[msg.To] = msg.Subject
	}
	assert.Equal(t, "New Quote Request from Jane Doe", subjects["sales@laxmi.example"])
	assert.Equal(t, "Thank you for contacting Laxmi Electronics", subjects["jane@example.com"])
}

func TestController_ContactMissingCity(t *testing.T) {
	server, requests := newTestServer(t, &stubTransport{})
	ctrl, err := formclient.NewController(models.FormTypeContact, testComposer(), formclient.NewClient(server.URL, nil))
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	for k, v := range map[string]any{
		"firstName":    "Jane",
		"lastName":     "Doe",
		"email":        "jane@example.com",
		"organization": "Acme Medical",
		"city":         "",
		"state":        "Maharashtra",
		"requirement":  "LSR gasket",
		"volume":       "50k/yr",
		"date":         "2026-12-01",
	} {
		ctrl.SetField(k, v)
	}

	_, err = ctrl.Submit(context.Background())

	var validationErr *formclient.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "city", validationErr.Fields[0].Field)
	assert.Equal(t, "City is required", validationErr.Fields[0].Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(requests))
}

func TestController_SingleFlight(t *testing.T) {
	transport := &stubTransport{gate: make(chan struct{})}
	server, _ := newTestServer(t, transport)
	ctrl := newQuoteController(t, server, formclient.WithResetDelay(time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return ctrl.Snapshot().State == formclient.StateSubmitting
	}, time.Second, 5*time.Millisecond)

	_, err := ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, formclient.ErrSubmitInFlight)

	// edits are ignored while the request is outstanding
	ctrl.SetField("name", "Someone Else")

	close(transport.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 2, transport.sentCount())
	assert.Equal(t, "Jane Doe", ctrl.Snapshot().Values["name"])
}

func TestController_UnreachableServer(t *testing.T) {
	server, _ := newTestServer(t, &stubTransport{})
	ctrl := newQuoteController(t, server)
	server.Close()

	result, err := ctrl.Submit(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, formclient.AlertFailed, ctrl.Snapshot().Alert)
}

func TestNewController_Errors(t *testing.T) {
	client := formclient.NewClient("http://localhost", nil)

	_, err := formclient.NewController("newsletter", testComposer(), client)
	assert.Error(t, err)

	_, err = formclient.NewController(models.FormTypeContact, nil, client)
	assert.Error(t, err)
}
