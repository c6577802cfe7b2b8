package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"giftr/internal/domain"
)

// supportedCurrencies are the ISO codes events may be budgeted in.
var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"CAD": true,
	"AUD": true,
	"MXN": true,
}

type eventService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	wishlistRepo    domain.WishlistItemRepository
	userRepo        domain.UserRepository
	scheduler       domain.DrawScheduler
	logger          *slog.Logger
	contextTimeout  time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	wishlistRepo domain.WishlistItemRepository,
	userRepo domain.UserRepository,
	scheduler domain.DrawScheduler,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		wishlistRepo:    wishlistRepo,
		userRepo:        userRepo,
		scheduler:       scheduler,
		logger:          logger,
		contextTimeout:  timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OrganizerID == "" {
		return fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	if err := validateEventFields(event.Title, event.Instructions, event.Budget, event.Currency); err != nil {
		return err
	}
	now := time.Now()
	if event.ScheduledOn.Before(truncateToDay(now)) {
		return fmt.Errorf("%w: event date cannot be in the past", domain.ErrInvalidInput)
	}
	if event.ScheduledDrawAt != nil {
		if !event.ScheduledDrawAt.After(now) {
			return fmt.Errorf("%w: draw time must be in the future", domain.ErrInvalidInput)
		}
		if !event.ScheduledDrawAt.Before(event.ScheduledOn.Add(24 * time.Hour)) {
			return fmt.Errorf("%w: draw time must not be after the event date", domain.ErrInvalidInput)
		}
	}

	event.Currency = strings.ToUpper(event.Currency)
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	if event.ScheduledDrawAt != nil {
		if err := s.scheduler.ScheduleDraw(ctx, event.ID, *event.ScheduledDrawAt); err != nil {
			s.logger.Warn("failed to register scheduled draw", "event_id", event.ID, "err", err)
		}
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Allow the organizer or any participant of the event.
	if event.OrganizerID != callerID {
		if _, err := s.participantRepo.GetByEventAndUser(ctx, eventID, callerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, fmt.Errorf("get participant: %w", err)
		}
	}

	participants, err := s.participantRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	withUsers := make([]*domain.ParticipantWithUser, 0, len(participants))
	for _, p := range participants {
		user, err := s.userRepo.GetByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// User deleted by the provider; keep the participant row visible.
				user = nil
			} else {
				return nil, fmt.Errorf("get participant user: %w", err)
			}
		}
		withUsers = append(withUsers, &domain.ParticipantWithUser{Participant: p, User: user})
	}

	return &domain.EventDetails{Event: event, Participants: withUsers}, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, organizerID string, title, topic *string, budget *float64, currency *string) (*domain.Event, error) {
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

	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
	}
	if budget != nil && *budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", domain.ErrInvalidInput)
	}
	if currency != nil {
		upper := strings.ToUpper(*currency)
		if !supportedCurrencies[upper] {
			return nil, fmt.Errorf("%w: unsupported currency %q", domain.ErrInvalidInput, *currency)
		}
		currency = &upper
	}

	updated, err := s.eventRepo.Update(ctx, eventID, title, topic, budget, currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return domain.ErrForbidden
	}

	if event.IsScheduled() {
		if err := s.scheduler.CancelDraw(ctx, eventID); err != nil {
			s.logger.Warn("failed to cancel scheduled draw", "event_id", eventID, "err", err)
		}
	}

	// Cascade: wishlist items, then participants, then the event.
	if err := s.wishlistRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete wishlist items: %w", err)
	}
	if err := s.participantRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ScheduleDraw(ctx context.Context, eventID, organizerID string, at time.Time) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.guardScheduleMutation(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	if !at.After(time.Now()) {
		return nil, fmt.Errorf("%w: draw time must be in the future", domain.ErrInvalidInput)
	}

	updated, err := s.eventRepo.SetScheduledDrawAt(ctx, event.ID, &at)
	if err != nil {
		if errors.Is(err, domain.ErrEventAlreadyDrawn) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set scheduled draw: %w", err)
	}

	if err := s.scheduler.ScheduleDraw(ctx, event.ID, at); err != nil {
		s.logger.Warn("failed to register scheduled draw", "event_id", event.ID, "err", err)
	}
	return updated, nil
}

func (s *eventService) CancelScheduledDraw(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.guardScheduleMutation(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.SetScheduledDrawAt(ctx, event.ID, nil)
	if err != nil {
		if errors.Is(err, domain.ErrEventAlreadyDrawn) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("clear scheduled draw: %w", err)
	}

	if err := s.scheduler.CancelDraw(ctx, event.ID); err != nil {
		s.logger.Warn("failed to cancel scheduled draw", "event_id", event.ID, "err", err)
	}
	return updated, nil
}

// guardScheduleMutation loads the event and rejects schedule changes from
// non-organizers or on drawn events.
func (s *eventService) guardScheduleMutation(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
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
	if event.IsDrawn() {
		return nil, domain.ErrEventAlreadyDrawn
	}
	return event, nil
}

func validateEventFields(title, instructions string, budget float64, currency string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(instructions) == "" {
		return fmt.Errorf("%w: instructions are required", domain.ErrInvalidInput)
	}
	if budget <= 0 {
		return fmt.Errorf("%w: budget must be positive", domain.ErrInvalidInput)
	}
	if !supportedCurrencies[strings.ToUpper(currency)] {
		return fmt.Errorf("%w: unsupported currency %q", domain.ErrInvalidInput, currency)
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
