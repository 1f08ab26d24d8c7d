//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"storefront-gateway/internal/middleware"

	"github.com/gorilla/websocket"
)

var userCounter int

// registerUser creates a fresh account through the gateway and returns
// the session cookie plus the email it registered with.
func registerUser(t *testing.T) (*http.Cookie, string) {
	t.Helper()

	userCounter++
	email := fmt.Sprintf("shopper-%d@example.com", userCounter)

	resp := doJSON(t, http.MethodPost, "/api/v1/auth/register", nil, map[string]string{
		"name":             "E2E Shopper",
		"email":            email,
		"phone":            "01012345678",
		"password":         "sup3r-secret",
		"password_confirm": "sup3r-secret",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned status %d", resp.StatusCode)
	}

	return sessionCookie(t, resp), email
}

// loginUser signs in an existing account and returns the session cookie.
func loginUser(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/api/v1/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}

	return sessionCookie(t, resp)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", middleware.SessionCookieName)
	return nil
}

// doJSON issues a request against the gateway, attaching the session
// cookie when one is given.
func doJSON(t *testing.T, method, path string, cookie *http.Cookie, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := testClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

// dialNotifications opens the per-session websocket notification stream.
func dialNotifications(t *testing.T, cookie *http.Cookie) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Cookie", cookie.Name+"="+cookie.Value)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws/notifications", header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("websocket dial failed (status %d): %v", status, err)
	}
	return conn
}
