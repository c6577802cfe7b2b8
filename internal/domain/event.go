package domain

import (
	"context"
	"errors"
	"time"
)

// Draw lifecycle states exposed by Event.DrawStatus.
const (
	DrawStatusNotStarted = "not_started"
	DrawStatusScheduled  = "scheduled"
	DrawStatusDrawn      = "drawn"
)

// ErrEventAlreadyDrawn is returned when a draw, schedule mutation, or
// participant mutation is attempted on an event whose draw already ran.
var ErrEventAlreadyDrawn = errors.New("event already drawn")

// ErrEventNotDrawn is returned when an assignment is requested before the draw.
var ErrEventNotDrawn = errors.New("event not drawn yet")

// Event represents a gift-exchange event owned by an organizer.
// Instructions is an opaque rich-text payload rendered by clients.
// swagger:model Event
type Event struct {
	ID              string     `json:"id"`
	OrganizerID     string     `json:"organizer_id"`
	Title           string     `json:"title"`
	Topic           *string    `json:"topic"`
	Instructions    string     `json:"instructions"`
	Budget          float64    `json:"budget"`
	Currency        string     `json:"currency"`
	ScheduledOn     time.Time  `json:"scheduled_on"`
	ScheduledDrawAt *time.Time `json:"scheduled_draw_at"`
	DrawnAt         *time.Time `json:"drawn_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(organizerID, title string, topic *string, instructions string, budget float64, currency string, scheduledOn time.Time, scheduledDrawAt *time.Time, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OrganizerID:     organizerID,
		Title:           title,
		Topic:           topic,
		Instructions:    instructions,
		Budget:          budget,
		Currency:        currency,
		ScheduledOn:     scheduledOn,
		ScheduledDrawAt: scheduledDrawAt,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// IsDrawn reports whether the draw has run. DrawnAt is set exactly once and
// never cleared.
func (e *Event) IsDrawn() bool {
	return e.DrawnAt != nil
}

// IsScheduled reports whether an automatic draw is pending.
func (e *Event) IsScheduled() bool {
	return !e.IsDrawn() && e.ScheduledDrawAt != nil
}

// DrawStatus returns the lifecycle state: not_started, scheduled, or drawn.
func (e *Event) DrawStatus() string {
	switch {
	case e.IsDrawn():
		return DrawStatusDrawn
	case e.ScheduledDrawAt != nil:
		return DrawStatusScheduled
	default:
		return DrawStatusNotStarted
	}
}

// EventDetails bundles an event with its participants for detail views.
type EventDetails struct {
	Event        *Event                 `json:"event"`
	Participants []*ParticipantWithUser `json:"participants"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, title, topic *string, budget *float64, currency *string) (*Event, error)
	// SetScheduledDrawAt sets or clears the scheduled draw timestamp. The
	// update is conditional on the event being undrawn; it returns
	// ErrEventAlreadyDrawn otherwise.
	SetScheduledDrawAt(ctx context.Context, eventID string, at *time.Time) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, callerID string) (*EventDetails, error)
	ListMyEvents(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, organizerID string, title, topic *string, budget *float64, currency *string) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
	// ScheduleDraw enables or updates the automatic draw. The timestamp must
	// be strictly in the future; the external scheduler is notified.
	ScheduleDraw(ctx context.Context, eventID, organizerID string, at time.Time) (*Event, error)
	// CancelScheduledDraw clears the scheduled draw and notifies the
	// external scheduler.
	CancelScheduledDraw(ctx context.Context, eventID, organizerID string) (*Event, error)
}
