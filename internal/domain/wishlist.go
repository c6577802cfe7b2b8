package domain

import (
	"context"
	"time"
)

// WishlistItem is a gift idea owned by a participant. Items are writable by
// their owner and surfaced read-only to whoever draws that participant.
// swagger:model WishlistItem
type WishlistItem struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name"`
	Link          string    `json:"link"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewWishlistItem returns a new WishlistItem. ID is typically set by the repository on create.
func NewWishlistItem(participantID, name, link string, notes *string, createdAt, updatedAt time.Time) *WishlistItem {
	return &WishlistItem{
		ParticipantID: participantID,
		Name:          name,
		Link:          link,
		Notes:         notes,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// WishlistItemRepository defines storage operations for wishlist items.
type WishlistItemRepository interface {
	Create(ctx context.Context, item *WishlistItem) error
	GetByID(ctx context.Context, id string) (*WishlistItem, error)
	ListByParticipantID(ctx context.Context, participantID string) ([]*WishlistItem, error)
	Update(ctx context.Context, itemID string, name, link, notes *string) (*WishlistItem, error)
	Delete(ctx context.Context, id string) error
	DeleteByEventID(ctx context.Context, eventID string) error
}

// WishlistService defines wishlist operations scoped to the caller's own
// participation in an event.
type WishlistService interface {
	AddItem(ctx context.Context, eventID, userID, name, link string, notes *string) (*WishlistItem, error)
	ListMyItems(ctx context.Context, eventID, userID string) ([]*WishlistItem, error)
	UpdateItem(ctx context.Context, eventID, itemID, userID string, name, link, notes *string) (*WishlistItem, error)
	DeleteItem(ctx context.Context, eventID, itemID, userID string) error
}
