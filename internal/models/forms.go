package models

import "strings"

// FormType discriminates the lead-capture forms on the site
type FormType string

const (
	FormTypeContact       FormType = "contact"
	FormTypeQuote         FormType = "quote"
	FormTypeCertification FormType = "certification"
)

// ParseFormType maps a route segment to a FormType
func ParseFormType(raw string) (FormType, bool) {
	switch FormType(strings.ToLower(strings.TrimSpace(raw))) {
	case FormTypeContact:
		return FormTypeContact, true
	case FormTypeQuote:
		return FormTypeQuote, true
	case FormTypeCertification:
		return FormTypeCertification, true
	default:
		return "", false
	}
}

// FormSubmission is the tagged union of the site's forms. Implementations
// are ContactForm, QuoteForm and CertificationForm.
type FormSubmission interface {
	Type() FormType
	SubmitterName() string
	SubmitterEmail() string
	CaptchaToken() string
}

// NewFormSubmission returns an empty form of the given type for binding
func NewFormSubmission(t FormType) FormSubmission {
	switch t {
	case FormTypeContact:
		return &ContactForm{}
	case FormTypeQuote:
		return &QuoteForm{}
	case FormTypeCertification:
		return &CertificationForm{}
	default:
		return nil
	}
}

// ContactForm is the general "get in touch" form for new projects
type ContactForm struct {
	FirstName      string `json:"firstName" form:"firstName" mapstructure:"firstName" validate:"required,max=100" label:"First name"`
	LastName       string `json:"lastName" form:"lastName" mapstructure:"lastName" validate:"required,max=100" label:"Last name"`
	Email          string `json:"email" form:"email" mapstructure:"email" validate:"required,email,max=254" label:"Email"`
	Phone          string `json:"phone" form:"phone" mapstructure:"phone" validate:"omitempty,max=30" label:"Phone"`
	Organization   string `json:"organization" form:"organization" mapstructure:"organization" validate:"required,max=200" label:"Organization"`
	City           string `json:"city" form:"city" mapstructure:"city" validate:"required,max=100" label:"City"`
	State          string `json:"state" form:"state" mapstructure:"state" validate:"required,max=100" label:"State"`
	Requirement    string `json:"requirement" form:"requirement" mapstructure:"requirement" validate:"required,max=5000" label:"Requirement"`
	Volume         string `json:"volume" form:"volume" mapstructure:"volume" validate:"required,max=200" label:"Volume"`
	Date           string `json:"date" form:"date" mapstructure:"date" validate:"required,max=50" label:"Date"`
	RecaptchaToken string `json:"recaptchaToken" form:"recaptchaToken" mapstructure:"recaptchaToken"`
}

func (f *ContactForm) Type() FormType         { return FormTypeContact }
func (f *ContactForm) SubmitterName() string  { return joinName(f.FirstName, f.LastName) }
func (f *ContactForm) SubmitterEmail() string { return f.Email }
func (f *ContactForm) CaptchaToken() string   { return f.RecaptchaToken }

// QuoteForm is the short quote request form; files are optional. CADFile
// and RFQFile are never bound from a request: they name uploads that were
// actually received.
type QuoteForm struct {
	Name           string `json:"name" form:"name" mapstructure:"name" validate:"required,max=200" label:"Name"`
	Email          string `json:"email" form:"email" mapstructure:"email" validate:"required,email,max=254" label:"Email"`
	Phone          string `json:"phone" form:"phone" mapstructure:"phone" validate:"omitempty,max=30" label:"Phone"`
	Message        string `json:"message" form:"message" mapstructure:"message" validate:"required,max=5000" label:"Message"`
	CADFile        string `json:"-" form:"-" mapstructure:"cad_file" validate:"omitempty,max=255" label:"CAD file"`
	RFQFile        string `json:"-" form:"-" mapstructure:"rfq_file" validate:"omitempty,max=255" label:"RFQ file"`
	RecaptchaToken string `json:"recaptchaToken" form:"recaptchaToken" mapstructure:"recaptchaToken"`
}

func (f *QuoteForm) Type() FormType         { return FormTypeQuote }
func (f *QuoteForm) SubmitterName() string  { return strings.TrimSpace(f.Name) }
func (f *QuoteForm) SubmitterEmail() string { return f.Email }
func (f *QuoteForm) CaptchaToken() string   { return f.RecaptchaToken }

// CertificationForm requests copies of quality certificates
type CertificationForm struct {
	FirstName      string `json:"firstName" form:"firstName" mapstructure:"firstName" validate:"required,max=100" label:"First name"`
	LastName       string `json:"lastName" form:"lastName" mapstructure:"lastName" validate:"required,max=100" label:"Last name"`
	Email          string `json:"email" form:"email" mapstructure:"email" validate:"required,email,max=254" label:"Email"`
	Phone          string `json:"phone" form:"phone" mapstructure:"phone" validate:"omitempty,max=30" label:"Phone"`
	Organization   string `json:"organization" form:"organization" mapstructure:"organization" validate:"required,max=200" label:"Organization"`
	City           string `json:"city" form:"city" mapstructure:"city" validate:"required,max=100" label:"City"`
	State          string `json:"state" form:"state" mapstructure:"state" validate:"required,max=100" label:"State"`
	Certificate    string `json:"certificate" form:"certificate" mapstructure:"certificate" validate:"omitempty,max=200" label:"Certificate"`
	Message        string `json:"message" form:"message" mapstructure:"message" validate:"omitempty,max=5000" label:"Message"`
	RecaptchaToken string `json:"recaptchaToken" form:"recaptchaToken" mapstructure:"recaptchaToken"`
}

func (f *CertificationForm) Type() FormType         { return FormTypeCertification }
func (f *CertificationForm) SubmitterName() string  { return joinName(f.FirstName, f.LastName) }
func (f *CertificationForm) SubmitterEmail() string { return f.Email }
func (f *CertificationForm) CaptchaToken() string   { return f.RecaptchaToken }

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

var (
	_ FormSubmission = (*ContactForm)(nil)
	_ FormSubmission = (*QuoteForm)(nil)
	_ FormSubmission = (*CertificationForm)(nil)
)
