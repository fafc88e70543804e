package composer

import "html/template"

// row is one labelled value in a notification table
type row struct {
	Label string
	Value string
}

type adminView struct {
	Heading string
	Intro   string
	Rows    []row
	Company string
}

type customerView struct {
	Greeting string
	Body     string
	Rows     []row
	Closing  string
	Company  string
}

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 640px; margin: 0 auto; padding: 24px;">
  <h2 style="margin: 0 0 8px; color: #0b3d91;">{{.Heading}}</h2>
  <p style="margin: 0 0 16px;">{{.Intro}}</p>
  <table style="width: 100%; border-collapse: collapse; font-size: 14px;">
    {{- range .Rows}}
    <tr>
      <td style="padding: 8px 12px; border: 1px solid #e5e7eb; background: #f9fafb; font-weight: bold; width: 35%; vertical-align: top;">{{.Label}}</td>
      <td style="padding: 8px 12px; border: 1px solid #e5e7eb; white-space: pre-wrap;">{{.Value}}</td>
    </tr>
    {{- end}}
  </table>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 24px 0;">
  <p style="color: #9ca3af; font-size: 12px;">This is an automated notification from the {{.Company}} website.</p>
</body>
</html>`))

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 640px; margin: 0 auto; padding: 24px;">
  <h2 style="margin: 0 0 16px; color: #0b3d91;">{{.Company}}</h2>
  <p>{{.Greeting}}</p>
  <p>{{.Body}}</p>
  {{- if .Rows}}
  <table style="width: 100%; border-collapse: collapse; font-size: 14px; margin: 16px 0;">
    {{- range .Rows}}
    <tr>
      <td style="padding: 6px 10px; color: #6b7280; width: 35%; vertical-align: top;">{{.Label}}</td>
      <td style="padding: 6px 10px; white-space: pre-wrap;">{{.Value}}</td>
    </tr>
    {{- end}}
  </table>
  {{- end}}
  <p>{{.Closing}}</p>
  <p>Best regards,<br>The {{.Company}} Team</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 24px 0;">
  <p style="color: #9ca3af; font-size: 12px;">This is an automated notification from the {{.Company}} website.</p>
</body>
</html>`))
