package state

import (
	"context"
	"sync"

	"storefront-gateway/internal/cache"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
)

// WishlistAPI is the slice of the catalog client the wishlist mirror
// depends on. Mutations return nothing useful; the authoritative state
// comes from the follow-up fetch.
type WishlistAPI interface {
	Wishlist(ctx context.Context, token string) ([]domain.ProductSummary, error)
	AddWishlistItem(ctx context.Context, token, productID string) error
	RemoveWishlistItem(ctx context.Context, token, productID string) error
}

type wishlistMirror struct {
	seq      uint64
	applied  uint64
	snapshot *domain.WishlistSnapshot
}

// Wishlist mirrors the upstream wishlist per session. Every mutation is
// followed by a full re-fetch because the upstream does not reliably
// return the updated collection inline.
type Wishlist struct {
	api      WishlistAPI
	cache    cache.SnapshotCache
	notifier Notifier

	mu      sync.Mutex
	mirrors map[string]*wishlistMirror
}

func NewWishlist(api WishlistAPI, snapshots cache.SnapshotCache, notifier Notifier) *Wishlist {
	return &Wishlist{
		api:      api,
		cache:    snapshots,
		notifier: notifier,
		mirrors:  make(map[string]*wishlistMirror),
	}
}

func (w *Wishlist) begin(sessionID string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	mirror, ok := w.mirrors[sessionID]
	if !ok {
		mirror = &wishlistMirror{}
		w.mirrors[sessionID] = mirror
	}
	mirror.seq++
	return mirror.seq
}

func (w *Wishlist) apply(ctx context.Context, sessionID string, seq uint64, snapshot *domain.WishlistSnapshot) bool {
	w.mu.Lock()
	mirror, ok := w.mirrors[sessionID]
	if !ok || seq <= mirror.applied {
		w.mu.Unlock()
		observability.StaleResponsesDiscarded.WithLabelValues("wishlist").Inc()
		observability.FromContext(ctx).Debug("discarded stale wishlist response",
			"session_id", sessionID, "seq", seq)
		return false
	}
	mirror.applied = seq
	mirror.snapshot = snapshot
	w.mu.Unlock()

	observability.SnapshotRefreshes.WithLabelValues("wishlist").Inc()
	if w.cache != nil {
		if err := w.cache.SetWishlist(ctx, sessionID, snapshot); err != nil {
			observability.FromContext(ctx).Warn("failed to mirror wishlist to cache",
				"session_id", sessionID, "error", err)
		}
	}
	return true
}

// Snapshot returns the current mirror, hydrating from the shared cache
// or the upstream when this replica holds nothing yet.
func (w *Wishlist) Snapshot(ctx context.Context, session *domain.Session) (*domain.WishlistSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	w.mu.Lock()
	if mirror, ok := w.mirrors[session.ID]; ok && mirror.snapshot != nil {
		snapshot := mirror.snapshot
		w.mu.Unlock()
		return snapshot, nil
	}
	w.mu.Unlock()

	if w.cache != nil {
		if snapshot, err := w.cache.GetWishlist(ctx, session.ID); err == nil {
			seq := w.begin(session.ID)
			w.apply(ctx, session.ID, seq, snapshot)
			return snapshot, nil
		}
	}

	return w.Refresh(ctx, session)
}

// Refresh re-fetches the authoritative wishlist.
func (w *Wishlist) Refresh(ctx context.Context, session *domain.Session) (*domain.WishlistSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	seq := w.begin(session.ID)
	items, err := w.api.Wishlist(ctx, session.APIToken)
	if err != nil {
		return nil, err
	}
	snapshot := &domain.WishlistSnapshot{Items: items}
	w.apply(ctx, session.ID, seq, snapshot)
	return snapshot, nil
}

// AddItem adds productID upstream, then re-fetches the collection.
func (w *Wishlist) AddItem(ctx context.Context, session *domain.Session, productID string) (*domain.WishlistSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	if err := w.api.AddWishlistItem(ctx, session.APIToken, productID); err != nil {
		return nil, err
	}

	seq := w.begin(session.ID)
	items, err := w.api.Wishlist(ctx, session.APIToken)
	if err != nil {
		return nil, err
	}
	snapshot := &domain.WishlistSnapshot{Items: items}
	if w.apply(ctx, session.ID, seq, snapshot) {
		w.notifier.NotifySuccess(ctx, "Product added to your wishlist.")
	}
	return snapshot, nil
}

// RemoveItem removes productID upstream, then re-fetches the collection.
func (w *Wishlist) RemoveItem(ctx context.Context, session *domain.Session, productID string) (*domain.WishlistSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	if err := w.api.RemoveWishlistItem(ctx, session.APIToken, productID); err != nil {
		return nil, err
	}

	seq := w.begin(session.ID)
	items, err := w.api.Wishlist(ctx, session.APIToken)
	if err != nil {
		return nil, err
	}
	snapshot := &domain.WishlistSnapshot{Items: items}
	if w.apply(ctx, session.ID, seq, snapshot) {
		w.notifier.NotifySuccess(ctx, "Product removed from your wishlist.")
	}
	return snapshot, nil
}

// Contains reports whether productID is in the session's last snapshot.
// Pure local lookup; an unhydrated mirror reads as not contained.
func (w *Wishlist) Contains(sessionID, productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	mirror, ok := w.mirrors[sessionID]
	if !ok {
		return false
	}
	return mirror.snapshot.Contains(productID)
}

// Drop forgets the session's mirror.
func (w *Wishlist) Drop(sessionID string) {
	w.mu.Lock()
	delete(w.mirrors, sessionID)
	w.mu.Unlock()
}
