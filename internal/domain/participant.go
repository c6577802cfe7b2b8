package domain

import (
	"context"
	"errors"
	"time"
)

// Participant invitation statuses. Only accepted participants are eligible
// for the draw.
const (
	ParticipantStatusPending  = "pending"
	ParticipantStatusAccepted = "accepted"
	ParticipantStatusDeclined = "declined"
)

// ErrAlreadyParticipant is returned when the (event, user) pair already exists.
var ErrAlreadyParticipant = errors.New("user is already a participant of this event")

// Participant links a user to an event. RecipientID points at another
// participant of the same event; it is null until the draw runs and is only
// ever written by the draw transaction.
// swagger:model Participant
type Participant struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	RecipientID *string   `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewParticipant returns a new Participant. ID is typically set by the repository on create.
func NewParticipant(eventID, userID, status string, createdAt, updatedAt time.Time) *Participant {
	return &Participant{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ParticipantWithUser bundles a participant with its user profile.
type ParticipantWithUser struct {
	Participant *Participant `json:"participant"`
	User        *User        `json:"user"`
}

// AssignmentReveal is what a participant sees after the draw: who they give
// to and that recipient's wishlist.
type AssignmentReveal struct {
	Recipient *ParticipantWithUser `json:"recipient"`
	Wishlist  []*WishlistItem      `json:"wishlist"`
}

// ParticipantRepository defines storage operations for participants.
// Create must surface the (event_id, user_id) unique constraint as
// ErrAlreadyParticipant.
type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id string) (*Participant, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Participant, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Participant, error)
	ListByEventAndStatus(ctx context.Context, eventID, status string) ([]*Participant, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	DeleteByEventID(ctx context.Context, eventID string) error
}

// ParticipantService defines participant membership operations. All mutating
// operations are rejected with ErrEventAlreadyDrawn once the event is drawn.
type ParticipantService interface {
	// Invite adds a pending participant by email (organizer only). Unknown
	// emails get a placeholder user until they sign up.
	Invite(ctx context.Context, eventID, organizerID, email string) (*Participant, error)
	// Join adds the caller as an accepted participant.
	Join(ctx context.Context, eventID, userID string) (*Participant, error)
	// Respond moves the caller's pending participation to accepted or declined.
	Respond(ctx context.Context, eventID, userID string, accept bool) (*Participant, error)
	Leave(ctx context.Context, eventID, userID string) error
	Remove(ctx context.Context, eventID, participantID, organizerID string) error
	ListParticipants(ctx context.Context, eventID, callerID string) ([]*ParticipantWithUser, error)
	// GetMyAssignment returns the caller's assigned recipient and that
	// recipient's wishlist. Returns ErrEventNotDrawn before the draw.
	GetMyAssignment(ctx context.Context, eventID, userID string) (*AssignmentReveal, error)
}
