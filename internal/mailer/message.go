package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

// Sender is the From identity of outgoing mail
type Sender struct {
	Name    string
	Address string
}

// buildMessage converts an EmailMessage into a MIME message with a fresh
// Message-ID. The id is returned so providers that do not report their own
// can still hand one back.
func buildMessage(from Sender, msg *models.EmailMessage) (*mail.Msg, string, error) {
	m := mail.NewMsg()

	if from.Name != "" {
		if err := m.FromFormat(from.Name, from.Address); err != nil {
			return nil, "", apperrors.InvalidInputError("from", err.Error())
		}
	} else if err := m.From(from.Address); err != nil {
		return nil, "", apperrors.InvalidInputError("from", err.Error())
	}

	if err := m.To(strings.TrimSpace(msg.To)); err != nil {
		return nil, "", apperrors.InvalidInputError("to", err.Error())
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	m.SetDate()

	messageID := newMessageID(from.Address)
	m.SetGenHeader(mail.HeaderMessageID, messageID)

	for i := range msg.Attachments {
		if err := attach(m, &msg.Attachments[i]); err != nil {
			return nil, "", err
		}
	}

	return m, messageID, nil
}

func attach(m *mail.Msg, a *models.Attachment) error {
	var opts []mail.FileOption
	if a.ContentType != "" {
		if strings.ContainsAny(a.ContentType, "\r\n") {
			return apperrors.InvalidInputError("attachments", fmt.Sprintf("%s has an invalid content type", a.Filename))
		}
		opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
	}

	switch {
	case a.Data != nil:
		if err := m.AttachReader(a.Filename, bytes.NewReader(a.Data), opts...); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	case a.Content != "":
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return apperrors.InvalidInputError("attachments", fmt.Sprintf("%s is not valid base64", a.Filename))
		}
		if err := m.AttachReader(a.Filename, bytes.NewReader(data), opts...); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	case a.Path != "":
		if _, err := os.Stat(a.Path); err != nil {
			return fmt.Errorf("attachment %s unavailable: %w", a.Filename, err)
		}
		opts = append(opts, mail.WithFileName(a.Filename))
		m.AttachFile(a.Path, opts...)
	default:
		return apperrors.InvalidInputError("attachments", fmt.Sprintf("%s has no content", a.Filename))
	}
	return nil
}

// newMessageID returns an RFC 5322 msg-id scoped to the sender's domain
func newMessageID(address string) string {
	domain := "localhost"
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		domain = address[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
