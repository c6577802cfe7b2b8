package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"giftr/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, title, topic *string, budget *float64, currency *string) (*domain.Event, error) {
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if title != nil {
		e.Title = *title
	}
	if topic != nil {
		e.Topic = topic
	}
	if budget != nil {
		e.Budget = *budget
	}
	if currency != nil {
		e.Currency = *currency
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) SetScheduledDrawAt(ctx context.Context, eventID string, at *time.Time) (*domain.Event, error) {
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.DrawnAt != nil {
		return nil, domain.ErrEventAlreadyDrawn
	}
	e.ScheduledDrawAt = at
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeParticipantRepo is an in-memory ParticipantRepository for tests.
type fakeParticipantRepo struct {
	byID      map[string]*domain.Participant
	nextID    int
	createErr error
	listErr   error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		byID:   make(map[string]*domain.Participant),
		nextID: 1,
	}
}

func (f *fakeParticipantRepo) add(p *domain.Participant) *domain.Participant {
	if p.ID == "" {
		p.ID = fmt.Sprintf("p-%d", f.nextID)
		f.nextID++
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakeParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.EventID == p.EventID && existing.UserID == p.UserID {
			return domain.ErrAlreadyParticipant
		}
	}
	f.add(p)
	return nil
}

func (f *fakeParticipantRepo) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	if p, ok := f.byID[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	for _, p := range f.byID {
		if p.EventID == eventID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Participant
	for _, p := range f.byID {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) ListByEventAndStatus(ctx context.Context, eventID, status string) ([]*domain.Participant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Participant
	for _, p := range f.byID {
		if p.EventID == eventID && p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) UpdateStatus(ctx context.Context, id, status string) error {
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeParticipantRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeParticipantRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	for id, p := range f.byID {
		if p.EventID == eventID {
			delete(f.byID, id)
		}
	}
	return nil
}

// fakeDrawRepo records applied assignments and mirrors the real repo's
// transactional behavior: on success it writes recipients into the
// participant repo and stamps the event drawn.
type fakeDrawRepo struct {
	events       *fakeEventRepo
	participants *fakeParticipantRepo
	err          error // if set, ApplyAssignments fails and writes nothing
	applied      []domain.Assignment
	calls        int
}

func (f *fakeDrawRepo) ApplyAssignments(ctx context.Context, eventID string, assignments []domain.Assignment, drawnAt time.Time) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	e, ok := f.events.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.DrawnAt != nil {
		return domain.ErrEventAlreadyDrawn
	}
	for _, a := range assignments {
		p, ok := f.participants.byID[a.GiverParticipantID]
		if !ok {
			return domain.ErrNotFound
		}
		recipientID := a.RecipientParticipantID
		p.RecipientID = &recipientID
	}
	e.DrawnAt = &drawnAt
	f.applied = assignments
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[string]*domain.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", f.nextID)
		f.nextID++
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.ExternalID == externalID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *u
	f.byID[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) DeleteByExternalID(ctx context.Context, externalID string) error {
	for id, u := range f.byID {
		if u.ExternalID == externalID {
			delete(f.byID, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeWishlistRepo is an in-memory WishlistItemRepository for tests.
type fakeWishlistRepo struct {
	byID   map[string]*domain.WishlistItem
	nextID int
	err    error
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{
		byID:   make(map[string]*domain.WishlistItem),
		nextID: 1,
	}
}

func (f *fakeWishlistRepo) add(item *domain.WishlistItem) *domain.WishlistItem {
	if item.ID == "" {
		item.ID = fmt.Sprintf("w-%d", f.nextID)
		f.nextID++
	}
	f.byID[item.ID] = item
	return item
}

func (f *fakeWishlistRepo) Create(ctx context.Context, item *domain.WishlistItem) error {
	if f.err != nil {
		return f.err
	}
	f.add(item)
	return nil
}

func (f *fakeWishlistRepo) GetByID(ctx context.Context, id string) (*domain.WishlistItem, error) {
	if item, ok := f.byID[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWishlistRepo) ListByParticipantID(ctx context.Context, participantID string) ([]*domain.WishlistItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.WishlistItem
	for _, item := range f.byID {
		if item.ParticipantID == participantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeWishlistRepo) Update(ctx context.Context, itemID string, name, link, notes *string) (*domain.WishlistItem, error) {
	item, ok := f.byID[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if name != nil {
		item.Name = *name
	}
	if link != nil {
		item.Link = *link
	}
	if notes != nil {
		item.Notes = notes
	}
	copied := *item
	return &copied, nil
}

func (f *fakeWishlistRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeWishlistRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	return nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	invitations   []*domain.InvitationEmailData
	drawCompletes []*domain.DrawCompleteEmailData
	err           error
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendDrawComplete(ctx context.Context, data *domain.DrawCompleteEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.drawCompletes = append(f.drawCompletes, data)
	return nil
}

// fakeScheduler records schedule and cancel calls.
type fakeScheduler struct {
	scheduled map[string]time.Time
	canceled  []string
	err       error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]time.Time)}
}

func (f *fakeScheduler) ScheduleDraw(ctx context.Context, eventID string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled[eventID] = at
	return nil
}

func (f *fakeScheduler) CancelDraw(ctx context.Context, eventID string) error {
	if f.err != nil {
		return f.err
	}
	f.canceled = append(f.canceled, eventID)
	return nil
}
