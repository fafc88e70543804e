package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

// SendEmailAPI is the subset of the SES v2 client the transport uses
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetAccount(ctx context.Context, params *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// SESTransport sends raw MIME messages through Amazon SES
type SESTransport struct {
	client SendEmailAPI
	from   Sender
}

// NewSESTransport builds an SES client. Static keys are used when both are
// set, otherwise the default AWS credential chain applies.
func NewSESTransport(ctx context.Context, cfg config.SESConfig, from Sender) (*SESTransport, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESTransportWithClient(sesv2.NewFromConfig(awsCfg), from), nil
}

// NewSESTransportWithClient wraps an existing client
func NewSESTransportWithClient(client SendEmailAPI, from Sender) *SESTransport {
	return &SESTransport{client: client, from: from}
}

// Name returns the provider name
func (t *SESTransport) Name() string {
	return "ses"
}

// Deliver sends msg as a raw message so attachments travel unchanged
func (t *SESTransport) Deliver(ctx context.Context, msg *models.EmailMessage) (string, error) {
	if t.from.Address == "" {
		return "", apperrors.NotConfiguredError("ses transport", "SMTP_FROM_EMAIL")
	}

	m, messageID, err := buildMessage(t.from, msg)
	if err != nil {
		return "", err
	}

	var raw bytes.Buffer
	if _, err := m.WriteTo(&raw); err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	out, err := t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw.Bytes()},
		},
	})
	if err != nil {
		return "", apperrors.DeliveryError(t.Name(), err)
	}

	if out != nil && out.MessageId != nil {
		return aws.ToString(out.MessageId), nil
	}
	return messageID, nil
}

// Verify checks that the account can send
func (t *SESTransport) Verify(ctx context.Context) error {
	out, err := t.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return apperrors.DeliveryError(t.Name(), err)
	}
	if !out.SendingEnabled {
		return apperrors.DeliveryError(t.Name(), fmt.Errorf("sending is disabled for this account"))
	}
	return nil
}
