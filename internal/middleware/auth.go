package middleware

import (
	"context"
	"net/http"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
	"storefront-gateway/internal/security"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
)

// SessionCookieName holds the signed session cookie. The cookie carries
// only the session ID; the session itself lives server-side.
const SessionCookieName = "storefront_session"

// SessionResolver turns a session ID into a live session. state.Auth
// implements it.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*domain.Session, error)
}

// Auth requires a valid signed session cookie and a resolvable session.
// The resolved session and its ID land in both the request context and
// the logging context.
func Auth(signer *security.CookieSigner, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			sessionID, err := signer.Verify(cookie.Value)
			if err != nil {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			session, err := resolver.Resolve(r.Context(), sessionID)
			if err != nil {
				http.Error(w, `{"error":"Invalid or expired session"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
			ctx = context.WithValue(ctx, SessionKey, session)
			ctx = observability.WithSessionID(ctx, session.ID)
			ctx = observability.WithUserID(ctx, session.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetSession(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
