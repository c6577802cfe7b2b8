package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"giftr/internal/domain"
)

type wishlistService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	wishlistRepo    domain.WishlistItemRepository
	contextTimeout  time.Duration
}

func NewWishlistService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	wishlistRepo domain.WishlistItemRepository,
	timeout time.Duration,
) domain.WishlistService {
	return &wishlistService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		wishlistRepo:    wishlistRepo,
		contextTimeout:  timeout,
	}
}

func (s *wishlistService) AddItem(ctx context.Context, eventID, userID, name, link string, notes *string) (*domain.WishlistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	me, err := s.myParticipation(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item := domain.NewWishlistItem(me.ID, name, link, notes, now, now)
	if err := s.wishlistRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create wishlist item: %w", err)
	}
	return item, nil
}

func (s *wishlistService) ListMyItems(ctx context.Context, eventID, userID string) ([]*domain.WishlistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	me, err := s.myParticipation(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.wishlistRepo.ListByParticipantID(ctx, me.ID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	if items == nil {
		items = []*domain.WishlistItem{}
	}
	return items, nil
}

func (s *wishlistService) UpdateItem(ctx context.Context, eventID, itemID, userID string, name, link, notes *string) (*domain.WishlistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}
	if _, err := s.ownedItem(ctx, eventID, itemID, userID); err != nil {
		return nil, err
	}

	updated, err := s.wishlistRepo.Update(ctx, itemID, name, link, notes)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update wishlist item: %w", err)
	}
	return updated, nil
}

func (s *wishlistService) DeleteItem(ctx context.Context, eventID, itemID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedItem(ctx, eventID, itemID, userID); err != nil {
		return err
	}
	if err := s.wishlistRepo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	return nil
}

// myParticipation resolves the caller's participant row for the event.
func (s *wishlistService) myParticipation(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	me, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return me, nil
}

// ownedItem verifies the item exists and belongs to the caller's
// participation in this event.
func (s *wishlistService) ownedItem(ctx context.Context, eventID, itemID, userID string) (*domain.WishlistItem, error) {
	me, err := s.myParticipation(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.wishlistRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get wishlist item: %w", err)
	}
	if item.ParticipantID != me.ID {
		return nil, domain.ErrForbidden
	}
	return item, nil
}
