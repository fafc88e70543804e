package models

import "strings"

// EmailMessage is a fully rendered email ready for a transport
type EmailMessage struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file attached to an EmailMessage. On the wire only
// Filename and base64 Content are accepted; Path and Data are filled
// server-side.
type Attachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Path        string `json:"path,omitempty"`
	Data        []byte `json:"-"`
}

// HasRecipientAndSubject reports whether the message can be addressed at all
func (m *EmailMessage) HasRecipientAndSubject() bool {
	return m != nil && strings.TrimSpace(m.To) != "" && strings.TrimSpace(m.Subject) != ""
}

// FileMetadata carries the names of files the visitor picked. The relay
// only logs these; it never fetches them.
type FileMetadata struct {
	CADFile *string `json:"cad_file"`
	RFQFile *string `json:"rfq_file"`
}

// SubmissionRequest is the body of POST /api/send-email
type SubmissionRequest struct {
	AdminEmail    *EmailMessage `json:"adminEmail"`
	CustomerEmail *EmailMessage `json:"customerEmail"`
	Files         *FileMetadata `json:"files,omitempty"`
}

const (
	deliveredMessage = "Email sent successfully"
	failedMessage    = "Failed to send email"
)

// DeliveryOutcome is the tagged result of one delivery attempt
type DeliveryOutcome struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message"`
}

// Delivered builds a success outcome
func Delivered(messageID string) DeliveryOutcome {
	return DeliveryOutcome{Success: true, MessageID: messageID, Message: deliveredMessage}
}

// DeliveryFailed builds a failure outcome carrying the error text
func DeliveryFailed(err error) DeliveryOutcome {
	text := "unknown error"
	if err != nil {
		text = err.Error()
	}
	return DeliveryOutcome{Success: false, Error: text, Message: failedMessage}
}

// Response messages shared by the relay endpoints
const (
	MessageEmailsSent       = "Emails sent successfully"
	MessageSendFailed       = "Failed to send one or more emails"
	MessageMissingEmails    = "Admin email and customer email data are required"
	MessageMissingAddresses = "Admin email and customer email must each include a recipient and subject"
	MessageInternalError    = "Internal server error"
	MessageValidationFailed = "Validation failed"
	MessageCaptchaFailed    = "Captcha verification failed"
	MessageUnknownFormType  = "Unknown form type"
)

// SubmissionResult is the aggregate response of a relay. Both outcomes are
// always present once a relay has been attempted.
type SubmissionResult struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	AdminEmail    *DeliveryOutcome `json:"adminEmail,omitempty"`
	CustomerEmail *DeliveryOutcome `json:"customerEmail,omitempty"`
	Error         string           `json:"error,omitempty"`
	Errors        []FieldError     `json:"errors,omitempty"`
}

// NewSubmissionResult aggregates two outcomes; success requires both
func NewSubmissionResult(admin, customer DeliveryOutcome) *SubmissionResult {
	result := &SubmissionResult{
		Success:       admin.Success && customer.Success,
		AdminEmail:    &admin,
		CustomerEmail: &customer,
	}
	if result.Success {
		result.Message = MessageEmailsSent
	} else {
		result.Message = MessageSendFailed
	}
	return result
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
