package domain

import (
	"context"
	"time"
)

// User mirrors a principal provisioned by the external identity provider.
// ExternalID is the provider's stable identifier; placeholder users created
// through invitations carry a synthetic ExternalID until the invitee signs up.
// swagger:model User
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"-"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(externalID, email, name string, createdAt, updatedAt time.Time) *User {
	return &User{
		ExternalID: externalID,
		Email:      email,
		Name:       name,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// PlaceholderExternalID returns the synthetic external ID used for users
// created by invitation before they sign up with the identity provider.
func PlaceholderExternalID(email string) string {
	return "pending_" + email
}

// TokenVerifier verifies a bearer token minted by the identity provider and
// returns the provider's subject (external user ID).
type TokenVerifier interface {
	Verify(token string) (externalID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	DeleteByExternalID(ctx context.Context, externalID string) error
}

// UserService keeps the local user table in sync with the identity provider
// and resolves authenticated principals.
type UserService interface {
	// SyncFromProvider upserts the user identified by externalID. A
	// placeholder user with the same email is claimed instead of duplicated.
	SyncFromProvider(ctx context.Context, externalID, email, name string) (*User, error)
	// RemoveFromProvider deletes the local mirror of a provider-deleted user.
	RemoveFromProvider(ctx context.Context, externalID string) error
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
