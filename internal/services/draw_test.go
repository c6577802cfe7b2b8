package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftr/internal/domain"
)

func newDrawFixture() (*drawService, *fakeEventRepo, *fakeParticipantRepo, *fakeDrawRepo, *fakeUserRepo, *fakeEmailService) {
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	drawRepo := &fakeDrawRepo{events: eventRepo, participants: participantRepo}
	userRepo := newFakeUserRepo()
	emails := &fakeEmailService{}
	svc := &drawService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		drawRepo:        drawRepo,
		userRepo:        userRepo,
		emailService:    emails,
		webBaseURL:      "https://giftr.test",
		logger:          testLogger(),
		contextTimeout:  2 * time.Second,
	}
	return svc, eventRepo, participantRepo, drawRepo, userRepo, emails
}

func seedParticipant(t *testing.T, participantRepo *fakeParticipantRepo, userRepo *fakeUserRepo, eventID, email, status string) *domain.Participant {
	t.Helper()
	now := time.Now()
	user := userRepo.add(domain.NewUser("ext_"+email, email, email, now, now))
	return participantRepo.add(domain.NewParticipant(eventID, user.ID, status, now, now))
}

// assertSingleCycle checks the assignment set is a derangement forming one
// cycle over exactly the given participant IDs.
func assertSingleCycle(t *testing.T, assignments []domain.Assignment, participantIDs []string) {
	t.Helper()

	if len(assignments) != len(participantIDs) {
		t.Fatalf("expected %d assignments, got %d", len(participantIDs), len(assignments))
	}

	eligible := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		eligible[id] = true
	}

	next := make(map[string]string, len(assignments))
	received := make(map[string]int, len(assignments))
	for _, a := range assignments {
		if a.GiverParticipantID == a.RecipientParticipantID {
			t.Fatalf("participant %s assigned to themselves", a.GiverParticipantID)
		}
		if !eligible[a.GiverParticipantID] {
			t.Fatalf("unexpected giver %s", a.GiverParticipantID)
		}
		if !eligible[a.RecipientParticipantID] {
			t.Fatalf("unexpected recipient %s", a.RecipientParticipantID)
		}
		if _, dup := next[a.GiverParticipantID]; dup {
			t.Fatalf("participant %s gives twice", a.GiverParticipantID)
		}
		next[a.GiverParticipantID] = a.RecipientParticipantID
		received[a.RecipientParticipantID]++
	}
	for _, id := range participantIDs {
		if received[id] != 1 {
			t.Fatalf("participant %s receives %d times, want 1", id, received[id])
		}
	}

	// Walking giver -> recipient must visit every participant before
	// returning to the start.
	start := assignments[0].GiverParticipantID
	seen := 0
	for cur := start; ; {
		cur = next[cur]
		seen++
		if cur == start {
			break
		}
		if seen > len(participantIDs) {
			t.Fatal("assignment walk does not terminate")
		}
	}
	if seen != len(participantIDs) {
		t.Fatalf("assignments form a cycle of length %d, want %d", seen, len(participantIDs))
	}
}

func TestDrawService_Draw_ThreeAccepted(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, emails := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Secret Santa"})
	var ids []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		p := seedParticipant(t, participantRepo, userRepo, event.ID, email, domain.ParticipantStatusAccepted)
		ids = append(ids, p.ID)
	}

	drawn, err := svc.Draw(context.Background(), event.ID, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drawn.DrawnAt == nil {
		t.Fatal("expected drawn_at to be set")
	}
	assertSingleCycle(t, drawRepo.applied, ids)

	// Every accepted participant has a recipient persisted.
	for _, id := range ids {
		p, err := participantRepo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get participant %s: %v", id, err)
		}
		if p.RecipientID == nil {
			t.Fatalf("participant %s has no recipient", id)
		}
	}

	if len(emails.drawCompletes) != 3 {
		t.Fatalf("expected 3 draw notifications, got %d", len(emails.drawCompletes))
	}
}

func TestDrawService_Draw_TwoAcceptedAreMutual(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, _ := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Pair"})
	p1 := seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	p2 := seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusAccepted)

	if _, err := svc.Draw(context.Background(), event.ID, "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSingleCycle(t, drawRepo.applied, []string{p1.ID, p2.ID})

	got1, _ := participantRepo.GetByID(context.Background(), p1.ID)
	got2, _ := participantRepo.GetByID(context.Background(), p2.ID)
	if *got1.RecipientID != p2.ID || *got2.RecipientID != p1.ID {
		t.Fatalf("expected mutual pair, got %v and %v", *got1.RecipientID, *got2.RecipientID)
	}
}

func TestDrawService_Draw_ExcludesIneligible(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, _ := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Mixed"})
	var accepted []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		p := seedParticipant(t, participantRepo, userRepo, event.ID, email, domain.ParticipantStatusAccepted)
		accepted = append(accepted, p.ID)
	}
	pending := seedParticipant(t, participantRepo, userRepo, event.ID, "d@example.com", domain.ParticipantStatusPending)
	declined := seedParticipant(t, participantRepo, userRepo, event.ID, "e@example.com", domain.ParticipantStatusDeclined)

	if _, err := svc.Draw(context.Background(), event.ID, "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSingleCycle(t, drawRepo.applied, accepted)

	// Pending and declined participants neither give nor receive.
	for _, id := range []string{pending.ID, declined.ID} {
		p, _ := participantRepo.GetByID(context.Background(), id)
		if p.RecipientID != nil {
			t.Fatalf("ineligible participant %s got a recipient", id)
		}
	}
}

func TestDrawService_Draw_InsufficientParticipants(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, _ := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Too small"})
	seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusPending)
	seedParticipant(t, participantRepo, userRepo, event.ID, "c@example.com", domain.ParticipantStatusPending)

	_, err := svc.Draw(context.Background(), event.ID, "org-1")
	if !errors.Is(err, domain.ErrInsufficientParticipants) {
		t.Fatalf("expected ErrInsufficientParticipants, got %v", err)
	}

	// Nothing was written.
	if drawRepo.calls != 0 {
		t.Fatalf("expected no ApplyAssignments calls, got %d", drawRepo.calls)
	}
	got, _ := eventRepo.GetByID(context.Background(), event.ID)
	if got.DrawnAt != nil {
		t.Fatal("event must not be marked drawn")
	}
	for _, p := range participantRepo.byID {
		if p.RecipientID != nil {
			t.Fatalf("participant %s has a recipient after failed draw", p.ID)
		}
	}
}

func TestDrawService_Draw_AlreadyDrawn(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, _ := newDrawFixture()

	drawnAt := time.Now().Add(-time.Hour)
	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Done", DrawnAt: &drawnAt})
	seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusAccepted)

	_, err := svc.Draw(context.Background(), event.ID, "org-1")
	if !errors.Is(err, domain.ErrEventAlreadyDrawn) {
		t.Fatalf("expected ErrEventAlreadyDrawn, got %v", err)
	}
	if drawRepo.calls != 0 {
		t.Fatalf("expected no ApplyAssignments calls, got %d", drawRepo.calls)
	}
}

func TestDrawService_Draw_ConcurrentDrawLosesRace(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, _ := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Race"})
	seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusAccepted)

	// Another invocation won between the fast-path check and the write.
	drawRepo.err = domain.ErrEventAlreadyDrawn

	_, err := svc.Draw(context.Background(), event.ID, "org-1")
	if !errors.Is(err, domain.ErrEventAlreadyDrawn) {
		t.Fatalf("expected ErrEventAlreadyDrawn, got %v", err)
	}
}

func TestDrawService_Draw_NotOrganizer(t *testing.T) {
	svc, eventRepo, participantRepo, _, userRepo, _ := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Guarded"})
	seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusAccepted)

	_, err := svc.Draw(context.Background(), event.ID, "someone-else")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDrawService_Draw_EventNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newDrawFixture()

	_, err := svc.Draw(context.Background(), "missing", "org-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDrawService_Draw_NotificationFailureDoesNotFailDraw(t *testing.T) {
	svc, eventRepo, participantRepo, _, userRepo, emails := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Flaky mail"})
	seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusAccepted)
	emails.err = errors.New("smtp down")

	drawn, err := svc.Draw(context.Background(), event.ID, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drawn.DrawnAt == nil {
		t.Fatal("expected drawn_at to be set despite mail failure")
	}
}

func TestDrawService_RunScheduledDraw(t *testing.T) {
	svc, eventRepo, participantRepo, drawRepo, userRepo, _ := newDrawFixture()

	event := eventRepo.add(&domain.Event{OrganizerID: "org-1", Title: "Scheduled"})
	p1 := seedParticipant(t, participantRepo, userRepo, event.ID, "a@example.com", domain.ParticipantStatusAccepted)
	p2 := seedParticipant(t, participantRepo, userRepo, event.ID, "b@example.com", domain.ParticipantStatusAccepted)

	drawn, err := svc.RunScheduledDraw(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drawn.DrawnAt == nil {
		t.Fatal("expected drawn_at to be set")
	}
	assertSingleCycle(t, drawRepo.applied, []string{p1.ID, p2.ID})

	// A second firing of the schedule is a no-op failure.
	if _, err := svc.RunScheduledDraw(context.Background(), event.ID); !errors.Is(err, domain.ErrEventAlreadyDrawn) {
		t.Fatalf("expected ErrEventAlreadyDrawn on second run, got %v", err)
	}
}

func TestBuildAssignments_AlwaysSingleCycle(t *testing.T) {
	participants := make([]*domain.Participant, 7)
	ids := make([]string, 7)
	for i := range participants {
		id := string(rune('a' + i))
		participants[i] = &domain.Participant{ID: id}
		ids[i] = id
	}

	// The shuffle is random; the cycle property must hold on every run.
	for trial := 0; trial < 50; trial++ {
		assignments, err := buildAssignments(participants)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		assertSingleCycle(t, assignments, ids)
	}
}
