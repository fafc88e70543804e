package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/laxmielectronics/site-api/internal/models"
)

// MockTransport is a mock implementation of mailer.Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, msg *models.EmailMessage) models.DeliveryOutcome {
	args := m.Called(ctx, msg)
	return args.Get(0).(models.DeliveryOutcome)
}

func (m *MockTransport) Verify(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTransport) Name() string {
	return "mock"
}

// MockCaptcha is a mock implementation of CaptchaVerifier
type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockCaptcha) Verify(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func sentTo(to string) interface{} {
	return mock.MatchedBy(func(msg *models.EmailMessage) bool {
		return msg != nil && msg.To == to
	})
}
