package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"giftr/internal/domain"
	"giftr/internal/random"
)

type drawService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	drawRepo        domain.DrawRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	webBaseURL      string
	logger          *slog.Logger
	contextTimeout  time.Duration
}

// NewDrawService creates a DrawService. emailService may be backed by a noop
// mailer; notification failures never fail the draw.
func NewDrawService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	drawRepo domain.DrawRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	webBaseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.DrawService {
	return &drawService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		drawRepo:        drawRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		webBaseURL:      webBaseURL,
		logger:          logger,
		contextTimeout:  timeout,
	}
}

func (s *drawService) Draw(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	return s.draw(ctx, event)
}

func (s *drawService) RunScheduledDraw(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.draw(ctx, event)
}

// draw runs the assignment for one event. The early IsDrawn check is a
// fast path; the authoritative guard is the conditional update inside the
// draw transaction, so two concurrent invocations cannot both succeed.
func (s *drawService) draw(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if event.IsDrawn() {
		return nil, domain.ErrEventAlreadyDrawn
	}

	accepted, err := s.participantRepo.ListByEventAndStatus(ctx, event.ID, domain.ParticipantStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("list accepted participants: %w", err)
	}
	if len(accepted) < domain.MinDrawParticipants {
		return nil, domain.ErrInsufficientParticipants
	}

	assignments, err := buildAssignments(accepted)
	if err != nil {
		return nil, fmt.Errorf("build assignments: %w", err)
	}

	drawnAt := time.Now()
	if err := s.drawRepo.ApplyAssignments(ctx, event.ID, assignments, drawnAt); err != nil {
		if errors.Is(err, domain.ErrEventAlreadyDrawn) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("apply assignments: %w", err)
	}

	drawn, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}

	s.notifyParticipants(ctx, drawn, accepted)
	return drawn, nil
}

// buildAssignments shuffles the accepted participants and closes them into a
// single cycle: shuffled[i] gives to shuffled[i+1], the last gives to the
// first. No participant can draw themselves, everyone gives and receives
// exactly once, and for more than two participants there are no mutual pairs.
func buildAssignments(participants []*domain.Participant) ([]domain.Assignment, error) {
	shuffled := make([]*domain.Participant, len(participants))
	copy(shuffled, participants)
	if err := random.Shuffle(shuffled); err != nil {
		return nil, err
	}

	assignments := make([]domain.Assignment, len(shuffled))
	for i, p := range shuffled {
		next := shuffled[(i+1)%len(shuffled)]
		assignments[i] = domain.Assignment{
			GiverParticipantID:     p.ID,
			RecipientParticipantID: next.ID,
		}
	}
	return assignments, nil
}

// notifyParticipants sends the "your recipient is ready" email to every
// drawn participant. Best effort: failures are logged and skipped.
func (s *drawService) notifyParticipants(ctx context.Context, event *domain.Event, participants []*domain.Participant) {
	for _, p := range participants {
		user, err := s.userRepo.GetByID(ctx, p.UserID)
		if err != nil {
			s.logger.Warn("draw notification skipped", "event_id", event.ID, "participant_id", p.ID, "err", err)
			continue
		}
		data := &domain.DrawCompleteEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			RevealURL:  fmt.Sprintf("%s/events/%s/recipient", s.webBaseURL, event.ID),
		}
		if err := s.emailService.SendDrawComplete(ctx, data); err != nil {
			s.logger.Warn("draw notification failed", "event_id", event.ID, "participant_id", p.ID, "err", err)
		}
	}
}
