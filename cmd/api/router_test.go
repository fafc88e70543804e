package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/composer"
	"github.com/laxmielectronics/site-api/internal/handlers"
	"github.com/laxmielectronics/site-api/internal/mailer"
	"github.com/laxmielectronics/site-api/internal/services"
	"github.com/laxmielectronics/site-api/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server:        config.ServerConfig{AppEnv: "test", AllowedOrigins: []string{"https://laxmi.example"}},
		Email:         config.EmailConfig{Provider: "log", AdminEmail: "sales@laxmi.example", SendTimeout: time.Second},
		SMTP:          config.SMTPConfig{FromEmail: "noreply@laxmi.example"},
		Observability: config.ObservabilityConfig{ServiceName: "laxmi-site-api-test"},
	}

	transport, err := mailer.New(context.Background(), cfg)
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	relay := services.NewRelayService(transport)
	forms := services.NewFormService(
		composer.New(composer.Config{AdminEmail: cfg.Email.AdminEmail}),
		relay, store, nil, 1<<20,
	)

	return newRouter(cfg, routeHandlers{
		health: handlers.NewHealthHandler(),
		email:  handlers.NewEmailHandler(relay),
		forms:  handlers.NewFormHandler(forms),
	})
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Server is running"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_HealthIsNotRateLimited(t *testing.T) {
	router := testRouter(t)
	for i := 0; i < 250; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
}

func TestRouter_Metrics(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_SendEmail(t *testing.T) {
	body := `{
		"adminEmail": {"to": "sales@laxmi.example", "subject": "New Quote Request from Jane Doe", "html": "<p>a</p>"},
		"customerEmail": {"to": "jane@example.com", "subject": "Thank you for contacting Laxmi Electronics", "html": "<p>c</p>"}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"messageId":"<`)
}

func TestRouter_QuoteForm(t *testing.T) {
	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"","message":"Need a quote for LSR parts"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Emails sent successfully"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/send-email", http.NoBody)
	req.Header.Set("Origin", "https://laxmi.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, "https://laxmi.example", w.Header().Get("Access-Control-Allow-Origin"))
}
