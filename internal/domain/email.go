package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// SignupConfirmationEmailData holds data for the performer signup confirmation.
type SignupConfirmationEmailData struct {
	Email         string
	PerformerName string
	EventTitle    string
	EventDate     string
	SlotName      string
	SlotStart     string
	SlotEnd       string
	VenueName     string
	SignupURL     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendSignupConfirmation(ctx context.Context, data *SignupConfirmationEmailData) error
}
