package state

import (
	"context"
	"sync"

	"storefront-gateway/internal/cache"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
)

// CartAPI is the slice of the catalog client the cart mirror depends on.
type CartAPI interface {
	GetCart(ctx context.Context, token string) (*domain.CartSnapshot, error)
	AddCartItem(ctx context.Context, token, productID string) (*domain.CartSnapshot, error)
	UpdateCartItem(ctx context.Context, token, productID string, quantity int) (*domain.CartSnapshot, error)
	RemoveCartItem(ctx context.Context, token, productID string) (*domain.CartSnapshot, error)
	ClearCart(ctx context.Context, token string) error
}

// cartMirror is one session's view of the server-owned cart. seq is the
// last request number issued for this session; applied is the request
// number whose snapshot is currently held. A response whose number is
// not greater than applied lost the race to a newer request and is
// discarded.
type cartMirror struct {
	seq      uint64
	applied  uint64
	snapshot *domain.CartSnapshot
}

// Cart mirrors the upstream cart per session. The mirror never does
// arithmetic on lines or totals; every update replaces the snapshot with
// exactly what the server returned.
type Cart struct {
	api      CartAPI
	cache    cache.SnapshotCache
	notifier Notifier

	mu      sync.Mutex
	mirrors map[string]*cartMirror
}

func NewCart(api CartAPI, snapshots cache.SnapshotCache, notifier Notifier) *Cart {
	return &Cart{
		api:      api,
		cache:    snapshots,
		notifier: notifier,
		mirrors:  make(map[string]*cartMirror),
	}
}

// begin issues the next request number for the session.
func (c *Cart) begin(sessionID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	mirror, ok := c.mirrors[sessionID]
	if !ok {
		mirror = &cartMirror{}
		c.mirrors[sessionID] = mirror
	}
	mirror.seq++
	return mirror.seq
}

// apply installs snapshot if seq is still the newest settled request.
// Returns false when the response was stale and discarded.
func (c *Cart) apply(ctx context.Context, sessionID string, seq uint64, snapshot *domain.CartSnapshot) bool {
	c.mu.Lock()
	mirror, ok := c.mirrors[sessionID]
	if !ok || seq <= mirror.applied {
		c.mu.Unlock()
		observability.StaleResponsesDiscarded.WithLabelValues("cart").Inc()
		observability.FromContext(ctx).Debug("discarded stale cart response",
			"session_id", sessionID, "seq", seq)
		return false
	}
	mirror.applied = seq
	mirror.snapshot = snapshot
	c.mu.Unlock()

	observability.SnapshotRefreshes.WithLabelValues("cart").Inc()
	if c.cache != nil {
		if err := c.cache.SetCart(ctx, sessionID, snapshot); err != nil {
			observability.FromContext(ctx).Warn("failed to mirror cart to cache",
				"session_id", sessionID, "error", err)
		}
	}
	return true
}

// Snapshot returns the current mirror, falling back to the shared cache
// and finally the upstream when this replica holds nothing yet.
func (c *Cart) Snapshot(ctx context.Context, session *domain.Session) (*domain.CartSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	c.mu.Lock()
	if mirror, ok := c.mirrors[session.ID]; ok && mirror.snapshot != nil {
		snapshot := mirror.snapshot
		c.mu.Unlock()
		return snapshot, nil
	}
	c.mu.Unlock()

	if c.cache != nil {
		if snapshot, err := c.cache.GetCart(ctx, session.ID); err == nil {
			seq := c.begin(session.ID)
			c.apply(ctx, session.ID, seq, snapshot)
			return snapshot, nil
		}
	}

	return c.Refresh(ctx, session)
}

// Refresh re-fetches the authoritative cart. Used on session
// establishment and as a resync after anything suspicious.
func (c *Cart) Refresh(ctx context.Context, session *domain.Session) (*domain.CartSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	seq := c.begin(session.ID)
	snapshot, err := c.api.GetCart(ctx, session.APIToken)
	if err != nil {
		return nil, err
	}
	c.apply(ctx, session.ID, seq, snapshot)
	return snapshot, nil
}

// AddItem adds one unit of productID. When the mirror already shows the
// line at the upstream's known stock level the call is rejected locally
// and no request is made.
func (c *Cart) AddItem(ctx context.Context, session *domain.Session, productID string) (*domain.CartSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	c.mu.Lock()
	if mirror, ok := c.mirrors[session.ID]; ok && mirror.snapshot != nil {
		if line, found := mirror.snapshot.Line(productID); found && line.Quantity >= line.AvailableStock {
			c.mu.Unlock()
			c.notifier.NotifyError(ctx, "No more stock available for this product.")
			return nil, domain.ErrStockExhausted
		}
	}
	c.mu.Unlock()

	seq := c.begin(session.ID)
	snapshot, err := c.api.AddCartItem(ctx, session.APIToken, productID)
	if err != nil {
		return nil, err
	}
	if c.apply(ctx, session.ID, seq, snapshot) {
		c.notifier.NotifySuccess(ctx, "Product added to your cart.")
	}
	return snapshot, nil
}

// RemoveItem removes the whole line for productID.
func (c *Cart) RemoveItem(ctx context.Context, session *domain.Session, productID string) (*domain.CartSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	seq := c.begin(session.ID)
	snapshot, err := c.api.RemoveCartItem(ctx, session.APIToken, productID)
	if err != nil {
		return nil, err
	}
	if c.apply(ctx, session.ID, seq, snapshot) {
		c.notifier.NotifySuccess(ctx, "Product removed from your cart.")
	}
	return snapshot, nil
}

// SetItemQuantity sets the line quantity. Quantities below one are a
// no-op: no request is made and the mirror is untouched. Removal goes
// through RemoveItem.
func (c *Cart) SetItemQuantity(ctx context.Context, session *domain.Session, productID string, quantity int) (*domain.CartSnapshot, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if quantity < 1 {
		c.mu.Lock()
		var snapshot *domain.CartSnapshot
		if mirror, ok := c.mirrors[session.ID]; ok {
			snapshot = mirror.snapshot
		}
		c.mu.Unlock()
		return snapshot, nil
	}

	seq := c.begin(session.ID)
	snapshot, err := c.api.UpdateCartItem(ctx, session.APIToken, productID, quantity)
	if err != nil {
		return nil, err
	}
	if c.apply(ctx, session.ID, seq, snapshot) {
		c.notifier.NotifySuccess(ctx, "Cart updated.")
	}
	return snapshot, nil
}

// Clear empties the cart. The upstream returns no snapshot for clear, so
// the applied state is the empty cart.
func (c *Cart) Clear(ctx context.Context, session *domain.Session) error {
	if !session.Authenticated() {
		return domain.ErrNotAuthenticated
	}

	seq := c.begin(session.ID)
	if err := c.api.ClearCart(ctx, session.APIToken); err != nil {
		return err
	}
	if c.apply(ctx, session.ID, seq, &domain.CartSnapshot{}) {
		c.notifier.NotifySuccess(ctx, "Cart cleared.")
	}
	return nil
}

// Drop forgets the session's mirror. Called when the session ends; the
// shared cache entry is dropped by the session owner.
func (c *Cart) Drop(sessionID string) {
	c.mu.Lock()
	delete(c.mirrors, sessionID)
	c.mu.Unlock()
}
