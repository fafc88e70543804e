package services

import (
	"context"

	"github.com/laxmielectronics/site-api/internal/models"
)

// RelayServiceInterface defines the interface for the two-message relay
type RelayServiceInterface interface {
	Relay(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResult, error)
}

// FormServiceInterface defines the interface for typed form submissions
type FormServiceInterface interface {
	Submit(ctx context.Context, sub models.FormSubmission, uploads []Upload) (*models.SubmissionResult, error)
}

// CaptchaVerifier is satisfied by *recaptcha.Verifier
type CaptchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token string) error
}
