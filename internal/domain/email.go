package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the participant invitation email.
type InvitationEmailData struct {
	Email         string
	OrganizerName string
	EventTitle    string
	EventURL      string
	Budget        float64
	Currency      string
}

// DrawCompleteEmailData holds data for the post-draw notification email.
type DrawCompleteEmailData struct {
	Email      string
	Name       string
	EventTitle string
	RevealURL  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendDrawComplete(ctx context.Context, data *DrawCompleteEmailData) error
}
