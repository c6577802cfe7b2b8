package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"giftr/internal/domain"
)

var participantEmailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type participantService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	wishlistRepo    domain.WishlistItemRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	webBaseURL      string
	logger          *slog.Logger
	contextTimeout  time.Duration
}

func NewParticipantService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	wishlistRepo domain.WishlistItemRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	webBaseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ParticipantService {
	return &participantService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		wishlistRepo:    wishlistRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		webBaseURL:      webBaseURL,
		logger:          logger,
		contextTimeout:  timeout,
	}
}

func (s *participantService) Invite(ctx context.Context, eventID, organizerID, email string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if !participantEmailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}

	event, err := s.guardMembershipMutation(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}

	// Invitees without an account get a placeholder user claimed on signup.
	invitee, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get user by email: %w", err)
		}
		now := time.Now()
		invitee = domain.NewUser(domain.PlaceholderExternalID(email), email, email, now, now)
		if err := s.userRepo.Create(ctx, invitee); err != nil {
			return nil, fmt.Errorf("create placeholder user: %w", err)
		}
	}

	now := time.Now()
	participant := domain.NewParticipant(eventID, invitee.ID, domain.ParticipantStatusPending, now, now)
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, domain.ErrAlreadyParticipant) {
			return nil, domain.ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}

	s.sendInvitation(ctx, event, organizerID, email)
	return participant, nil
}

func (s *participantService) Join(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.guardMembershipMutation(ctx, eventID); err != nil {
		return nil, err
	}

	now := time.Now()
	participant := domain.NewParticipant(eventID, userID, domain.ParticipantStatusAccepted, now, now)
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, domain.ErrAlreadyParticipant) {
			return nil, domain.ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}
	return participant, nil
}

func (s *participantService) Respond(ctx context.Context, eventID, userID string, accept bool) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.guardMembershipMutation(ctx, eventID); err != nil {
		return nil, err
	}

	participant, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if participant.Status != domain.ParticipantStatusPending {
		return nil, fmt.Errorf("%w: invitation already %s", domain.ErrInvalidInput, participant.Status)
	}

	status := domain.ParticipantStatusDeclined
	if accept {
		status = domain.ParticipantStatusAccepted
	}
	if err := s.participantRepo.UpdateStatus(ctx, participant.ID, status); err != nil {
		return nil, fmt.Errorf("update participant status: %w", err)
	}
	participant.Status = status
	return participant, nil
}

func (s *participantService) Leave(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.guardMembershipMutation(ctx, eventID); err != nil {
		return err
	}

	participant, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get participant: %w", err)
	}
	if err := s.participantRepo.Delete(ctx, participant.ID); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

func (s *participantService) Remove(ctx context.Context, eventID, participantID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.guardMembershipMutation(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != organizerID {
		return domain.ErrForbidden
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get participant: %w", err)
	}
	if participant.EventID != eventID {
		return domain.ErrNotFound
	}
	if err := s.participantRepo.Delete(ctx, participant.ID); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

func (s *participantService) ListParticipants(ctx context.Context, eventID, callerID string) ([]*domain.ParticipantWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
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

	result := make([]*domain.ParticipantWithUser, 0, len(participants))
	for _, p := range participants {
		user, err := s.userRepo.GetByID(ctx, p.UserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get participant user: %w", err)
		}
		result = append(result, &domain.ParticipantWithUser{Participant: p, User: user})
	}
	return result, nil
}

func (s *participantService) GetMyAssignment(ctx context.Context, eventID, userID string) (*domain.AssignmentReveal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsDrawn() {
		return nil, domain.ErrEventNotDrawn
	}

	me, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if me.RecipientID == nil {
		// Pending/declined participants never receive an assignment.
		return nil, domain.ErrNotFound
	}

	recipient, err := s.participantRepo.GetByID(ctx, *me.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("get recipient participant: %w", err)
	}
	recipientUser, err := s.userRepo.GetByID(ctx, recipient.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get recipient user: %w", err)
	}
	wishlist, err := s.wishlistRepo.ListByParticipantID(ctx, recipient.ID)
	if err != nil {
		return nil, fmt.Errorf("list recipient wishlist: %w", err)
	}
	if wishlist == nil {
		wishlist = []*domain.WishlistItem{}
	}

	return &domain.AssignmentReveal{
		Recipient: &domain.ParticipantWithUser{Participant: recipient, User: recipientUser},
		Wishlist:  wishlist,
	}, nil
}

// guardMembershipMutation loads the event and rejects membership changes on
// drawn events.
func (s *participantService) guardMembershipMutation(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.IsDrawn() {
		return nil, domain.ErrEventAlreadyDrawn
	}
	return event, nil
}

// sendInvitation emails the invitee. Best effort: a delivery failure leaves
// the pending participant in place.
func (s *participantService) sendInvitation(ctx context.Context, event *domain.Event, organizerID, email string) {
	organizerName := "The organizer"
	if organizer, err := s.userRepo.GetByID(ctx, organizerID); err == nil && organizer.Name != "" {
		organizerName = organizer.Name
	}
	data := &domain.InvitationEmailData{
		Email:         email,
		OrganizerName: organizerName,
		EventTitle:    event.Title,
		EventURL:      fmt.Sprintf("%s/events/%s", s.webBaseURL, event.ID),
		Budget:        event.Budget,
		Currency:      event.Currency,
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.Warn("invitation email failed", "event_id", event.ID, "email", email, "err", err)
	}
}
