package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// The two renderings share the same View but differ in copy and recipient:
// the customer gets a receipt confirmation, the admin mailbox gets a lead
// alert.

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your configuration, {{.Customer.Name}}!</h2>
  <p>We received your {{.ProductLine}} configuration #{{.ID}} and will contact you shortly.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Structure type</b></td><td>{{.StructureType}}</td></tr>
    <tr><td><b>Model</b></td><td>{{.Model}}</td></tr>
    <tr><td><b>Coverage</b></td><td>{{.Coverage}}</td></tr>
    <tr><td><b>Color</b></td><td>{{.Color}}</td></tr>
    {{if .Surface}}<tr><td><b>Surface</b></td><td>{{.Surface}}</td></tr>{{end}}
    {{if .Package}}<tr><td><b>Package</b></td><td>{{.Package}}</td></tr>{{end}}
    <tr><td><b>Dimensions</b></td><td>{{printf "%.0f" .WidthCM}} × {{printf "%.0f" .DepthCM}} × {{printf "%.0f" .HeightCM}} cm</td></tr>
    <tr><td><b>Total price</b></td><td>€ {{printf "%.2f" .TotalPrice}}</td></tr>
  </table>
  <p>Best regards,<br>Your configurator team</p>
</body>
</html>`))

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>New {{.ProductLine}} lead #{{.ID}}</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Customer</b></td><td>{{.Customer.Name}}</td></tr>
    <tr><td><b>Email</b></td><td>{{.Customer.Email}}</td></tr>
    <tr><td><b>Phone</b></td><td>{{.Customer.Phone}}</td></tr>
    <tr><td><b>Address</b></td><td>{{.Customer.Address}}, {{.Customer.City}} {{.Customer.PostalCode}}</td></tr>
    {{if .Customer.ContactPreference}}<tr><td><b>Prefers</b></td><td>{{.Customer.ContactPreference}}</td></tr>{{end}}
    <tr><td><b>Structure type</b></td><td>{{.StructureType}}</td></tr>
    <tr><td><b>Model</b></td><td>{{.Model}}</td></tr>
    <tr><td><b>Coverage</b></td><td>{{.Coverage}}</td></tr>
    <tr><td><b>Color</b></td><td>{{.Color}}</td></tr>
    {{if .Surface}}<tr><td><b>Surface</b></td><td>{{.Surface}}</td></tr>{{end}}
    {{if .Package}}<tr><td><b>Package</b></td><td>{{.Package}}</td></tr>{{end}}
    <tr><td><b>Dimensions</b></td><td>{{printf "%.0f" .WidthCM}} × {{printf "%.0f" .DepthCM}} × {{printf "%.0f" .HeightCM}} cm</td></tr>
    <tr><td><b>Total price</b></td><td>€ {{printf "%.2f" .TotalPrice}}</td></tr>
    {{if .Notes}}<tr><td><b>Notes</b></td><td>{{.Notes}}</td></tr>{{end}}
  </table>
</body>
</html>`))

func renderCustomerEmail(view View) (string, error) {
	var buf bytes.Buffer
	if err := customerTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render customer email: %w", err)
	}
	return buf.String(), nil
}

func renderAdminEmail(view View) (string, error) {
	var buf bytes.Buffer
	if err := adminTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render admin email: %w", err)
	}
	return buf.String(), nil
}
