package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSigner_RoundTrip(t *testing.T) {
	signer := NewCookieSigner("cookie-signing-secret")

	t.Run("mint_then_verify_returns_session_id", func(t *testing.T) {
		value, err := signer.Mint("sess-123", time.Now())
		require.NoError(t, err)

		sessionID, err := signer.Verify(value)
		require.NoError(t, err)
		assert.Equal(t, "sess-123", sessionID)
	})

	t.Run("cookie_expiry_matches_upstream_token_lifetime", func(t *testing.T) {
		assert.Equal(t, 90*24*time.Hour, CookieTTL)
	})
}

func TestCookieSigner_Verify_Invalid(t *testing.T) {
	signer := NewCookieSigner("cookie-signing-secret")

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		value, err := signer.Mint("sess-123", time.Now())
		require.NoError(t, err)

		other := NewCookieSigner("another-secret")
		_, err = other.Verify(value)
		assert.ErrorIs(t, err, ErrCookieInvalid)
	})

	t.Run("tampered_payload_rejected", func(t *testing.T) {
		value, err := signer.Mint("sess-123", time.Now())
		require.NoError(t, err)

		parts := strings.Split(value, ".")
		require.Len(t, parts, 3)
		parts[1] = parts[1][:len(parts[1])-2] + "xx"
		_, err = signer.Verify(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrCookieInvalid)
	})

	t.Run("expired_cookie_rejected", func(t *testing.T) {
		value, err := signer.Mint("sess-123", time.Now().Add(-2*CookieTTL))
		require.NoError(t, err)

		_, err = signer.Verify(value)
		assert.ErrorIs(t, err, ErrCookieInvalid)
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		_, err := signer.Verify("definitely-not-a-jwt")
		assert.ErrorIs(t, err, ErrCookieInvalid)
	})
}
