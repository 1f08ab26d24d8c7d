package cache

import (
	"context"
	"errors"
	"time"

	"storefront-gateway/internal/domain"
)

var ErrMiss = errors.New("cache miss")

// DefaultTTL bounds how long a mirrored snapshot may be served before the
// upstream is consulted again. The upstream remains the source of truth;
// the cache only exists so replicas and redirect checks can read without
// an upstream round trip.
const DefaultTTL = 15 * time.Minute

// SnapshotCache mirrors the per-session cart and wishlist snapshots.
type SnapshotCache interface {
	GetCart(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	SetCart(ctx context.Context, sessionID string, snapshot *domain.CartSnapshot) error
	GetWishlist(ctx context.Context, sessionID string) (*domain.WishlistSnapshot, error)
	SetWishlist(ctx context.Context, sessionID string, snapshot *domain.WishlistSnapshot) error
	DropSession(ctx context.Context, sessionID string) error
}
