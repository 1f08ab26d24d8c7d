package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront-gateway/internal/cache"
	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
	"storefront-gateway/internal/security"
)

// SessionTTL matches the upstream token lifetime, which is also the
// cookie lifetime.
const SessionTTL = security.CookieTTL

// Notifier is the slice of the notification center the state mirrors use.
type Notifier interface {
	NotifyError(ctx context.Context, message string)
	NotifySuccess(ctx context.Context, message string)
}

// AuthAPI is the slice of the catalog client the auth state depends on.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (string, catalog.User, error)
	SignUp(ctx context.Context, fields catalog.SignUpFields) (string, catalog.User, error)
	UpdateMe(ctx context.Context, token, name, email, phone string) (catalog.User, error)
	ChangePassword(ctx context.Context, token, current, next, confirm string) error
}

// Auth owns the session lifecycle. A session lives in three places that
// are kept in step: this instance's memory map, the postgres row (the
// durable copy other replicas hydrate from), and the signed cookie the
// handler layer mints. The upstream token is fatal on any 401; there is
// no refresh path.
type Auth struct {
	api      AuthAPI
	sessions domain.SessionRepository
	cache    cache.SnapshotCache
	notifier Notifier

	mu     sync.RWMutex
	active map[string]*domain.Session

	onEnd []func(sessionID string)
}

func NewAuth(api AuthAPI, sessions domain.SessionRepository, snapshots cache.SnapshotCache, notifier Notifier) *Auth {
	return &Auth{
		api:      api,
		sessions: sessions,
		cache:    snapshots,
		notifier: notifier,
		active:   make(map[string]*domain.Session),
	}
}

// OnSessionEnd registers fn to run whenever a session is dropped, for
// whatever reason. The state mirrors subscribe to forget their copies.
// Wire subscribers at startup.
func (a *Auth) OnSessionEnd(fn func(sessionID string)) {
	a.onEnd = append(a.onEnd, fn)
}

// Login exchanges credentials for an upstream token and establishes a
// session. The returned session is already persisted; the caller mints
// the cookie.
func (a *Auth) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	token, user, err := a.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, token, user)
}

// Register creates the upstream account and establishes a session from
// the token the signup response carries, so a fresh registration lands
// signed in.
func (a *Auth) Register(ctx context.Context, fields catalog.SignUpFields) (*domain.Session, error) {
	token, user, err := a.api.SignUp(ctx, fields)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, token, user)
}

func (a *Auth) establish(ctx context.Context, token string, user catalog.User) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:          uuid.New().String(),
		UserID:      userIDFromToken(token, user.Email),
		DisplayName: user.Name,
		Email:       user.Email,
		Role:        user.Role,
		APIToken:    token,
		ExpiresAt:   now.Add(SessionTTL),
		CreatedAt:   now,
	}

	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	a.mu.Lock()
	a.active[session.ID] = session
	a.mu.Unlock()

	observability.FromContext(ctx).Info("session established",
		"session_id", session.ID,
		"user_id", session.UserID)
	return session, nil
}

// Resolve returns the live session for id, hydrating from the durable
// row when this replica has not seen it yet.
func (a *Auth) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	a.mu.RLock()
	session, ok := a.active[id]
	a.mu.RUnlock()
	if ok {
		if time.Now().After(session.ExpiresAt) {
			a.drop(ctx, id)
			return nil, domain.ErrSessionExpired
		}
		return session, nil
	}

	session, err := a.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		a.drop(ctx, id)
		return nil, domain.ErrSessionExpired
	}

	a.mu.Lock()
	a.active[id] = session
	a.mu.Unlock()
	return session, nil
}

// Logout ends the session in all three locations. Cookie expiry is the
// handler's half of the contract.
func (a *Auth) Logout(ctx context.Context, sessionID string) {
	a.drop(ctx, sessionID)
	observability.FromContext(ctx).Info("session ended", "session_id", sessionID)
}

// RefreshUser re-reads the durable session row and replaces the
// in-memory copy. The upstream has no "current user" endpoint, so the
// row is authoritative for identity between profile updates.
func (a *Auth) RefreshUser(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := a.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.active[sessionID] = session
	a.mu.Unlock()
	return session, nil
}

// UpdateProfile pushes the new identity upstream, then writes the user
// object the upstream returned back to the session row and memory.
func (a *Auth) UpdateProfile(ctx context.Context, session *domain.Session, name, email, phone string) (*domain.Session, error) {
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := a.api.UpdateMe(ctx, session.APIToken, name, email, phone)
	if err != nil {
		return nil, err
	}

	if err := a.sessions.UpdateUser(ctx, session.ID, user.Name, user.Email, user.Role); err != nil {
		return nil, fmt.Errorf("failed to update session row: %w", err)
	}

	updated := *session
	updated.DisplayName = user.Name
	updated.Email = user.Email
	if user.Role != "" {
		updated.Role = user.Role
	}

	a.mu.Lock()
	a.active[session.ID] = &updated
	a.mu.Unlock()

	a.notifier.NotifySuccess(ctx, "Profile updated.")
	return &updated, nil
}

// ChangePassword rotates the upstream password. The upstream invalidates
// the current token on success, so the session ends with it.
func (a *Auth) ChangePassword(ctx context.Context, session *domain.Session, current, next, confirm string) error {
	if !session.Authenticated() {
		return domain.ErrNotAuthenticated
	}

	if err := a.api.ChangePassword(ctx, session.APIToken, current, next, confirm); err != nil {
		return err
	}

	a.drop(ctx, session.ID)
	a.notifier.NotifySuccess(ctx, "Password changed. Please sign in again.")
	return nil
}

// HandleSessionExpired is subscribed to the catalog client's 401 hook.
// It clears every location the session lives in; the client already
// surfaced the user-visible notification for the failed call, so none
// is emitted here.
func (a *Auth) HandleSessionExpired(ctx context.Context) {
	sessionID, ok := observability.SessionIDFromContext(ctx)
	if !ok || sessionID == "" {
		return
	}

	observability.SessionsExpired.Inc()
	observability.FromContext(ctx).Warn("session invalidated by upstream", "session_id", sessionID)
	a.drop(ctx, sessionID)
}

// DeleteExpired removes durable rows past their expiry. Run periodically
// from main.
func (a *Auth) DeleteExpired(ctx context.Context) (int64, error) {
	return a.sessions.DeleteExpired(ctx)
}

func (a *Auth) drop(ctx context.Context, sessionID string) {
	a.mu.Lock()
	delete(a.active, sessionID)
	a.mu.Unlock()

	if err := a.sessions.Delete(ctx, sessionID); err != nil && err != domain.ErrSessionNotFound {
		observability.FromContext(ctx).Warn("failed to delete session row",
			"session_id", sessionID, "error", err)
	}
	if a.cache != nil {
		if err := a.cache.DropSession(ctx, sessionID); err != nil {
			observability.FromContext(ctx).Warn("failed to drop cached snapshots",
				"session_id", sessionID, "error", err)
		}
	}

	for _, fn := range a.onEnd {
		fn(sessionID)
	}
}

// userIDFromToken pulls the upstream user id out of the token's claims.
// The token is upstream-signed; we only read it, never trust it for
// authorization decisions of our own.
func userIDFromToken(token, fallback string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if id, ok := claims["id"].(string); ok && id != "" {
			return id
		}
	}
	return strings.ToLower(fallback)
}
