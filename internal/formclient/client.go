// Package formclient is the browser side of the relay written in Go: an API
// client for the site endpoints and a per-form Controller that validates,
// composes and submits like the site's forms do.
package formclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/internal/models"
	"github.com/laxmielectronics/site-api/pkg/httpclient"
	"github.com/laxmielectronics/site-api/pkg/logger"
)

const maxResponseBytes = 1 << 20

// StatusError is returned for any non-2xx response. Result holds the decoded
// body when the server sent a SubmissionResult.
type StatusError struct {
	StatusCode int
	Message    string
	Result     *models.SubmissionResult
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the site API
type Client struct {
	baseURL    string
	httpClient httpclient.Client
}

// NewClient creates a client for baseURL, e.g. "https://laxmi.example".
// A nil httpClient gets a 10 second standard client.
func NewClient(baseURL string, httpClient httpclient.Client) *Client {
	if httpClient == nil {
		httpClient = httpclient.NewStandardClient(0)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Health calls GET /api/health
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	status, err := c.do(ctx, http.MethodGet, "/api/health", nil, &health)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{StatusCode: status, Message: health.Message}
	}
	return &health, nil
}

// SendEmail posts a pre-rendered message pair to /api/send-email. A partial
// delivery returns both the result and a *StatusError.
func (c *Client) SendEmail(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResult, error) {
	return c.submit(ctx, "/api/send-email", req)
}

// SubmitForm posts a typed form as JSON to /api/v1/forms/:formType and
// lets the server compose the notifications.
func (c *Client) SubmitForm(ctx context.Context, sub models.FormSubmission) (*models.SubmissionResult, error) {
	if sub == nil {
		return nil, fmt.Errorf("form submission is required")
	}
	return c.submit(ctx, "/api/v1/forms/"+string(sub.Type()), sub)
}

func (c *Client) submit(ctx context.Context, path string, body any) (*models.SubmissionResult, error) {
	var result models.SubmissionResult
	status, err := c.do(ctx, http.MethodPost, path, body, &result)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return &result, &StatusError{StatusCode: status, Message: result.Message, Result: &result}
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	start := time.Now()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.LogAPICall(ctx, "site-api", path, "error", time.Since(start).Seconds(), zap.Error(err))
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.LogAPICall(ctx, "site-api", path, http.StatusText(resp.StatusCode), time.Since(start).Seconds())

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
		}
	}
	return resp.StatusCode, nil
}
