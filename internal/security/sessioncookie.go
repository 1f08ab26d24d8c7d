package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieTTL matches the upstream token lifetime so the cookie and the
// Catalog API token expire together.
const CookieTTL = 90 * 24 * time.Hour

var ErrCookieInvalid = errors.New("session cookie invalid")

// CookieSigner mints and verifies the signed session cookie handed to the
// UI shell. The cookie carries only the session ID; everything else lives
// in the session store.
type CookieSigner struct {
	secret []byte
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Mint creates a signed cookie value for sessionID.
func (cs *CookieSigner) Mint(sessionID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(CookieTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cs.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the session ID.
func (cs *CookieSigner) Verify(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cs.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrCookieInvalid
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrCookieInvalid
	}
	return claims.Subject, nil
}
