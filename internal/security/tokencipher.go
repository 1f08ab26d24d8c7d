package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrCiphertextInvalid = errors.New("ciphertext invalid")

// TokenCipher encrypts upstream Catalog API tokens before they reach
// durable storage. A leaked sessions table must not leak usable tokens.
type TokenCipher struct {
	key []byte
}

// NewTokenCipher derives a cipher key from the application session secret.
func NewTokenCipher(secret string) *TokenCipher {
	key := sha256.Sum256([]byte(secret))
	return &TokenCipher{key: key[:]}
}

// Seal encrypts a raw upstream token for storage. Output is base64 with the
// nonce prepended.
func (tc *TokenCipher) Seal(token string) (string, error) {
	aead, err := chacha20poly1305.NewX(tc.key)
	if err != nil {
		return "", fmt.Errorf("failed to build aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored token. Any tampering or a wrong key yields
// ErrCiphertextInvalid.
func (tc *TokenCipher) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrCiphertextInvalid
	}

	aead, err := chacha20poly1305.NewX(tc.key)
	if err != nil {
		return "", fmt.Errorf("failed to build aead: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrCiphertextInvalid
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	return string(plain), nil
}
