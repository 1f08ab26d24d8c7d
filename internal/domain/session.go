package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Session binds the authenticated storefront identity to the upstream
// Catalog API token. APIToken is the raw token the upstream expects in its
// `token` header; it is stored encrypted at rest.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	APIToken    string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Authenticated reports whether the session carries a full identity.
// The token and the user record are always set and cleared together.
func (s *Session) Authenticated() bool {
	return s != nil && s.APIToken != "" && s.UserID != ""
}

// SessionRepository defines the interface for durable session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	UpdateUser(ctx context.Context, id, displayName, email, role string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
