package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/middleware"
)

// Shared fixtures for the handler tests. Handlers read the session from
// the request context, so tests inject one directly instead of running
// the auth middleware chain.

func testSession() *domain.Session {
	return &domain.Session{
		ID:          "sess-1",
		UserID:      "user-1",
		DisplayName: "Dana Shopper",
		Email:       "dana@example.com",
		Role:        "user",
		APIToken:    "upstream-token",
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
	}
}

func withSession(r *http.Request, session *domain.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), session))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
