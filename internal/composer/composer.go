// Package composer renders the admin notification and the customer
// acknowledgment for a form submission. Rendering is deterministic: the same
// submission always yields byte-identical messages.
package composer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/laxmielectronics/site-api/internal/models"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

const emptyValue = "-"

// Config carries the values resolved once at startup
type Config struct {
	AdminEmail  string
	CompanyName string
}

// Composer turns a FormSubmission into its two EmailMessages
type Composer struct {
	adminEmail string
	company    string
}

// New creates a composer. CompanyName defaults to "Laxmi Electronics".
func New(cfg Config) *Composer {
	company := cfg.CompanyName
	if company == "" {
		company = "Laxmi Electronics"
	}
	return &Composer{adminEmail: cfg.AdminEmail, company: company}
}

// AdminEmail returns the notification recipient
func (c *Composer) AdminEmail() string {
	return c.adminEmail
}

// Compose dispatches on the submission variant and renders both messages.
func (c *Composer) Compose(sub models.FormSubmission) (admin, customer *models.EmailMessage, err error) {
	if c.adminEmail == "" {
		return nil, nil, apperrors.NotConfiguredError("composer", "ADMIN_EMAIL")
	}

	var draft notification
	switch f := sub.(type) {
	case *models.ContactForm:
		draft = c.contact(f)
	case *models.QuoteForm:
		draft = c.quote(f)
	case *models.CertificationForm:
		draft = c.certification(f)
	default:
		return nil, nil, apperrors.InvalidInputError("formType", fmt.Sprintf("unsupported submission %T", sub))
	}

	adminHTML, err := render(adminTemplate, draft.admin)
	if err != nil {
		return nil, nil, err
	}
	customerHTML, err := render(customerTemplate, draft.customer)
	if err != nil {
		return nil, nil, err
	}

	admin = &models.EmailMessage{To: c.adminEmail, Subject: draft.adminSubject, HTML: adminHTML}
	customer = &models.EmailMessage{To: sub.SubmitterEmail(), Subject: draft.customerSubject, HTML: customerHTML}
	return admin, customer, nil
}

// notification is the variant-specific content before rendering
type notification struct {
	adminSubject    string
	customerSubject string
	admin           adminView
	customer        customerView
}

func (c *Composer) thanksSubject() string {
	return "Thank you for contacting " + c.company
}

func (c *Composer) contact(f *models.ContactForm) notification {
	name := f.SubmitterName()
	return notification{
		adminSubject:    fmt.Sprintf("New Contact Inquiry from %s - %s", name, f.Organization),
		customerSubject: c.thanksSubject(),
		admin: adminView{
			Heading: "New Contact Inquiry",
			Intro:   "A visitor submitted the contact form with the following details.",
			Company: c.company,
			Rows: []row{
				{"First name", f.FirstName},
				{"Last name", f.LastName},
				{"Email", f.Email},
				{"Phone", orEmpty(f.Phone)},
				{"Organization", f.Organization},
				{"City", f.City},
				{"State", f.State},
				{"Requirement", f.Requirement},
				{"Volume", f.Volume},
				{"Target date", f.Date},
			},
		},
		customer: customerView{
			Greeting: fmt.Sprintf("Dear %s,", name),
			Body:     "Thank you for reaching out to us. We have received your inquiry and our team will review your requirement.",
			Rows: []row{
				{"Organization", f.Organization},
				{"Requirement", f.Requirement},
				{"Volume", f.Volume},
				{"Target date", f.Date},
			},
			Closing: "A member of our team will get back to you within two business days.",
			Company: c.company,
		},
	}
}

func (c *Composer) quote(f *models.QuoteForm) notification {
	name := f.SubmitterName()
	return notification{
		adminSubject:    "New Quote Request from " + name,
		customerSubject: c.thanksSubject(),
		admin: adminView{
			Heading: "New Quote Request",
			Intro:   "A visitor requested a quote with the following details.",
			Company: c.company,
			Rows: []row{
				{"Name", name},
				{"Email", f.Email},
				{"Phone", orEmpty(f.Phone)},
				{"Message", f.Message},
				{"CAD file", orEmpty(f.CADFile)},
				{"RFQ file", orEmpty(f.RFQFile)},
			},
		},
		customer: customerView{
			Greeting: fmt.Sprintf("Dear %s,", name),
			Body:     "Thank you for your quote request. Our engineering team is reviewing the details you shared.",
			Rows: []row{
				{"Your message", f.Message},
			},
			Closing: "We will contact you with a quotation or any follow-up questions shortly.",
			Company: c.company,
		},
	}
}

func (c *Composer) certification(f *models.CertificationForm) notification {
	name := f.SubmitterName()
	return notification{
		adminSubject:    fmt.Sprintf("New Certification Request from %s - %s", name, f.Organization),
		customerSubject: "Your certification request has been received - " + c.company,
		admin: adminView{
			Heading: "New Certification Request",
			Intro:   "A visitor requested certification documents with the following details.",
			Company: c.company,
			Rows: []row{
				{"First name", f.FirstName},
				{"Last name", f.LastName},
				{"Email", f.Email},
				{"Phone", orEmpty(f.Phone)},
				{"Organization", f.Organization},
				{"City", f.City},
				{"State", f.State},
				{"Certificate", orEmpty(f.Certificate)},
				{"Message", orEmpty(f.Message)},
			},
		},
		customer: customerView{
			Greeting: fmt.Sprintf("Dear %s,", name),
			Body:     "Thank you for your interest in our quality certifications. We have received your request.",
			Rows: []row{
				{"Certificate", orEmpty(f.Certificate)},
			},
			Closing: "Our quality team will share the requested documents with you by email.",
			Company: c.company,
		},
	}
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func orEmpty(v string) string {
	if v == "" {
		return emptyValue
	}
	return v
}
