package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/internal/models"
	"github.com/laxmielectronics/site-api/pkg/logger"
)

// LogTransport writes messages to the log instead of sending them.
// Used in development and in local smoke tests.
type LogTransport struct {
	from Sender
}

// NewLogTransport creates a log-only transport
func NewLogTransport(from Sender) *LogTransport {
	return &LogTransport{from: from}
}

// Name returns the provider name
func (t *LogTransport) Name() string {
	return "log"
}

// Deliver logs msg and reports it as sent
func (t *LogTransport) Deliver(ctx context.Context, msg *models.EmailMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := newMessageID(t.from.Address)
	filenames := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		filenames = append(filenames, a.Filename)
	}

	logger.Info("Email logged instead of sent",
		zap.String("message_id", messageID),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.Strings("attachments", filenames),
	)
	return messageID, nil
}

// Verify always succeeds
func (t *LogTransport) Verify(context.Context) error {
	return nil
}
