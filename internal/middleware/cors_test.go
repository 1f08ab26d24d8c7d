package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-gateway/internal/testutil"
)

func corsRequest(t *testing.T, handler http.Handler, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_OriginMatching(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		shouldAllow    bool
	}{
		{
			name:           "allowed storefront origin",
			allowedOrigins: []string{"https://shop.example.com", "http://localhost:5173"},
			requestOrigin:  "https://shop.example.com",
			shouldAllow:    true,
		},
		{
			name:           "allowed dev origin",
			allowedOrigins: []string{"https://shop.example.com", "http://localhost:5173"},
			requestOrigin:  "http://localhost:5173",
			shouldAllow:    true,
		},
		{
			name:           "disallowed origin",
			allowedOrigins: []string{"https://shop.example.com"},
			requestOrigin:  "https://evil.example.net",
			shouldAllow:    false,
		},
		{
			name:           "no origin header",
			allowedOrigins: []string{"https://shop.example.com"},
			requestOrigin:  "",
			shouldAllow:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(tt.allowedOrigins)(okHandler())
			w := corsRequest(t, handler, http.MethodGet, tt.requestOrigin)

			got := w.Header().Get("Access-Control-Allow-Origin")
			if tt.shouldAllow {
				testutil.AssertEqual(t, got, tt.requestOrigin)
				testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Credentials"), "true")
			} else {
				testutil.AssertEqual(t, got, "")
				testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Credentials"), "")
			}
		})
	}
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	// The wildcard entry allows every origin, but because requests are
	// credentialed the response must echo the concrete origin back.
	handler := CORS([]string{"*"})(okHandler())
	w := corsRequest(t, handler, http.MethodGet, "http://localhost:5173")

	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "http://localhost:5173")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Credentials"), "true")
}

func TestCORS_WildcardWithoutOriginSetsNothing(t *testing.T) {
	handler := CORS([]string{"*"})(okHandler())
	w := corsRequest(t, handler, http.MethodGet, "")

	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestCORS_Preflight(t *testing.T) {
	nextCalled := false
	handler := CORS([]string{"https://shop.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	w := corsRequest(t, handler, http.MethodOptions, "https://shop.example.com")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertFalse(t, nextCalled, "preflight should not reach the handler")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "https://shop.example.com")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Max-Age"), "600")

	methods := w.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
		testutil.AssertContains(t, methods, m)
	}
}

func TestCORS_VaryOriginAlwaysSet(t *testing.T) {
	handler := CORS([]string{"https://shop.example.com"})(okHandler())

	for _, origin := range []string{"https://shop.example.com", "https://evil.example.net", ""} {
		w := corsRequest(t, handler, http.MethodGet, origin)
		testutil.AssertEqual(t, w.Header().Get("Vary"), "Origin")
	}
}

func TestCORS_RegularRequestPassesThrough(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			nextCalled := false
			handler := CORS([]string{"https://shop.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			corsRequest(t, handler, method, "https://shop.example.com")
			testutil.AssertTrue(t, nextCalled, "next handler should run for "+method)
		})
	}
}

func TestParseOrigins(t *testing.T) {
	origins := ParseOrigins(" https://shop.example.com , http://localhost:5173 ")
	testutil.AssertLen(t, origins, 2)
	testutil.AssertEqual(t, origins[0], "https://shop.example.com")
	testutil.AssertEqual(t, origins[1], "http://localhost:5173")

	single := ParseOrigins("*")
	testutil.AssertLen(t, single, 1)
	testutil.AssertEqual(t, single[0], "*")
}
