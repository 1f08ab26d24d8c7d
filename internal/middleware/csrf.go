package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// CSRF guards state-changing requests against cross-site submission. The
// session rides on a cookie, so a hostile page could otherwise fire
// credentialed POSTs at the gateway. Browsers attach an Origin header to
// cross-origin and same-origin non-GET requests; the guard rejects any
// state-changing request whose Origin (or Referer, as fallback) is not in
// the allowed set. Requests without either header come from non-browser
// clients and pass through, since they cannot carry ambient cookies.
func CSRF(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			origin := requestOrigin(r)
			if origin == "" || wildcard {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := allowed[origin]; !ok {
				logCSRFFailure(r, origin)
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod returns true if the HTTP method is idempotent and cacheable.
// These methods should not modify state and don't require origin checks.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// isExemptPath returns true if the request path should skip the CSRF guard.
// Exempted paths include health checks, metrics, and websocket upgrades.
func isExemptPath(path string) bool {
	exemptPaths := []string{
		"/health",
		"/metrics",
		"/ws/",
	}

	for _, exemptPath := range exemptPaths {
		if strings.HasPrefix(path, exemptPath) {
			return true
		}
	}
	return false
}

// requestOrigin returns the request's origin: the Origin header when set,
// otherwise the scheme://host of the Referer.
func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// logCSRFFailure logs a security event when the origin check fails.
// Useful for monitoring and detecting potential CSRF attacks.
func logCSRFFailure(r *http.Request, origin string) {
	slog.Warn("cross-site request blocked",
		slog.String("origin", origin),
		slog.String("method", r.Method),
		slog.String("path", r.RequestURI),
		slog.String("remote_addr", r.RemoteAddr),
	)
}
