package domain

import (
	"context"
	"errors"
	"time"
)

// MinDrawParticipants is the smallest accepted-participant count a draw can
// run with. With two participants the pair are necessarily mutual givers.
const MinDrawParticipants = 2

// ErrInsufficientParticipants is returned when a draw is attempted with
// fewer than MinDrawParticipants accepted participants.
var ErrInsufficientParticipants = errors.New("at least 2 accepted participants are required to draw")

// Assignment maps one participant (the giver) to the participant they give
// to. A full draw result is a slice of assignments forming a single cycle
// over the accepted participant set.
type Assignment struct {
	GiverParticipantID     string `json:"giver_participant_id"`
	RecipientParticipantID string `json:"recipient_participant_id"`
}

// DrawRepository applies a computed assignment set atomically. Either every
// recipient is written and the event is marked drawn, or nothing is.
// ApplyAssignments returns ErrEventAlreadyDrawn when the event was drawn by
// a concurrent invocation, and ErrNotFound when an assigned participant no
// longer exists; in both cases no writes survive.
type DrawRepository interface {
	ApplyAssignments(ctx context.Context, eventID string, assignments []Assignment, drawnAt time.Time) error
}

// DrawService runs the draw for an event.
type DrawService interface {
	// Draw runs the draw on behalf of the event's organizer.
	Draw(ctx context.Context, eventID, organizerID string) (*Event, error)
	// RunScheduledDraw runs the draw on behalf of the external scheduler.
	RunScheduledDraw(ctx context.Context, eventID string) (*Event, error)
}

// DrawScheduler is the port to the external scheduling service that fires
// automatic draws. Calls are fire-and-forget from the caller's perspective;
// failures are logged, not surfaced to end users.
type DrawScheduler interface {
	ScheduleDraw(ctx context.Context, eventID string, at time.Time) error
	CancelDraw(ctx context.Context, eventID string) error
}
