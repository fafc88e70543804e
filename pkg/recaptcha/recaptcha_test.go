package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
	"github.com/laxmielectronics/site-api/pkg/httpclient"
)

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-secret", r.PostForm.Get("secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify_Success(t *testing.T) {
	srv := newServer(t, `{"success":true,"hostname":"laxmi.example"}`)
	v := NewVerifier("test-secret", httpclient.NewStandardClient(time.Second)).WithURL(srv.URL)

	assert.NoError(t, v.Verify(context.Background(), "token"))
}

func TestVerify_Rejected(t *testing.T) {
	srv := newServer(t, `{"success":false,"error-codes":["invalid-input-response"]}`)
	v := NewVerifier("test-secret", httpclient.NewStandardClient(time.Second)).WithURL(srv.URL)

	err := v.Verify(context.Background(), "token")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCaptcha))
}

func TestVerify_MinScore(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		minScore float64
		wantErr  bool
	}{
		{name: "below threshold", body: `{"success":true,"score":0.3}`, minScore: 0.5, wantErr: true},
		{name: "at threshold", body: `{"success":true,"score":0.5}`, minScore: 0.5},
		{name: "check disabled", body: `{"success":true,"score":0.1}`},
		{name: "v2 response without score", body: `{"success":true}`, minScore: 0.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.body)
			v := NewVerifier("test-secret", httpclient.NewStandardClient(time.Second)).
				WithURL(srv.URL).
				WithMinScore(tt.minScore)

			err := v.Verify(context.Background(), "token")
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.ErrCaptcha))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerify_MissingToken(t *testing.T) {
	v := NewVerifier("test-secret", httpclient.NewStandardClient(time.Second))
	err := v.Verify(context.Background(), " ")
	assert.True(t, apperrors.Is(err, apperrors.ErrCaptcha))
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewVerifier("", nil).Enabled())
	assert.True(t, NewVerifier("secret", nil).Enabled())

	var v *Verifier
	assert.False(t, v.Enabled())
}
