package services

import (
	"context"
	"fmt"
	"log"

	"giftr/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendInvitation sends the participant invitation email using the "invitation" template.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render invitation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	log.Printf("[EMAIL] Invitation sent to %s", data.Email)
	return nil
}

// SendDrawComplete sends the post-draw notification using the "draw_complete" template.
func (s *emailService) SendDrawComplete(ctx context.Context, data *domain.DrawCompleteEmailData) error {
	if data == nil {
		return fmt.Errorf("draw complete data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("draw_complete", data)
	if err != nil {
		return fmt.Errorf("failed to render draw_complete template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send draw complete email: %w", err)
	}
	log.Printf("[EMAIL] Draw notification sent to %s", data.Email)
	return nil
}
