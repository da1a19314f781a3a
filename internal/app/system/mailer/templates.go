// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// VerificationEmailData holds data for the signup verification email.
type VerificationEmailData struct {
	SiteName  string
	Username  string
	Link      string
	ExpiresIn string // e.g., "24 hours"
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	SiteName  string
	Link      string
	ExpiresIn string
}

// ReservationEmailData holds data for the reservation confirmation email.
type ReservationEmailData struct {
	SiteName        string
	Name            string
	ItemName        string
	Reference       string
	StartDate       string
	EndDate         string
	NumberOfPersons int
	SpecialRequests string
}

// BuildVerificationEmail creates a verification email with both HTML and text bodies.
func BuildVerificationEmail(to string, data VerificationEmailData) Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n", data.Username)
	fmt.Fprintf(&text, "Please confirm your email address for %s by opening this link:\n", data.SiteName)
	text.WriteString(data.Link + "\n\n")
	fmt.Fprintf(&text, "This link expires in %s.\n\n", data.ExpiresIn)
	text.WriteString("If you did not create an account, you can safely ignore this email.\n")

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Verify your %s account", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(verificationHTML, data),
	}
}

// BuildPasswordResetEmail creates a password reset email.
func BuildPasswordResetEmail(to string, data PasswordResetEmailData) Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Someone asked to reset the password for your %s account.\n\n", data.SiteName)
	text.WriteString("To choose a new password, open this link:\n")
	text.WriteString(data.Link + "\n\n")
	fmt.Fprintf(&text, "This link expires in %s and can be used once.\n\n", data.ExpiresIn)
	text.WriteString("If you did not request a reset, you can ignore this email; your password is unchanged.\n")

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(resetHTML, data),
	}
}

// BuildReservationEmail creates a reservation confirmation email.
func BuildReservationEmail(to string, data ReservationEmailData) Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n", data.Name)
	fmt.Fprintf(&text, "We received your reservation for %s.\n\n", data.ItemName)
	fmt.Fprintf(&text, "Reference: %s\n", data.Reference)
	fmt.Fprintf(&text, "Dates: %s to %s\n", data.StartDate, data.EndDate)
	fmt.Fprintf(&text, "Guests: %d\n", data.NumberOfPersons)
	if data.SpecialRequests != "" {
		fmt.Fprintf(&text, "Special requests: %s\n", data.SpecialRequests)
	}
	text.WriteString("\nYour reservation is pending; we will let you know once it is confirmed.\n")

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Your %s reservation for %s", data.SiteName, data.ItemName),
		TextBody: text.String(),
		HTMLBody: render(reservationHTML, data),
	}
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return ""
	}
	return buf.String()
}

var (
	verificationHTML = template.Must(template.Must(layout.Clone()).Parse(`{{define "content"}}
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hello {{.Username}}, please confirm your email address.
              </p>
              {{template "button" .Link}}
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                This link expires in {{.ExpiresIn}}.
              </p>
{{end}}`))

	resetHTML = template.Must(template.Must(layout.Clone()).Parse(`{{define "content"}}
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Someone asked to reset your password. Use the button below to choose a new one.
              </p>
              {{template "button" .Link}}
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                This link expires in {{.ExpiresIn}} and can be used once.
              </p>
{{end}}`))

	reservationHTML = template.Must(template.Must(layout.Clone()).Parse(`{{define "content"}}
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hello {{.Name}}, we received your reservation for <strong>{{.ItemName}}</strong>.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="6" style="font-size: 14px; color: #374151;">
                <tr><td>Reference</td><td style="font-family: 'Courier New', monospace;">{{.Reference}}</td></tr>
                <tr><td>Dates</td><td>{{.StartDate}} to {{.EndDate}}</td></tr>
                <tr><td>Guests</td><td>{{.NumberOfPersons}}</td></tr>
                {{if .SpecialRequests}}<tr><td>Special requests</td><td>{{.SpecialRequests}}</td></tr>{{end}}
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                Your reservation is pending confirmation.
              </p>
{{end}}`))
)

var layout = template.Must(template.New("layout").Parse(`{{define "layout"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
{{template "content" .}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>{{end}}
{{define "button"}}<table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.}}" style="display: inline-block; padding: 14px 32px; background-color: #0f766e; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">Continue</a>
                  </td>
                </tr>
              </table>{{end}}
{{define "content"}}{{end}}`))

// FormatExpiry renders d as "N hours" or "N minutes" for email copy.
func FormatExpiry(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
