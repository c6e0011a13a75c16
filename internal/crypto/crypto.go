// Package crypto seals aggregation access credentials at rest.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfo = "budgetapp linked-account credential v1"

var (
	// ErrInvalidKey is returned when the configured secret is empty.
	ErrInvalidKey = errors.New("crypto: encryption key must not be empty")
	// ErrMalformedCiphertext is returned when a sealed value cannot be decoded.
	ErrMalformedCiphertext = errors.New("crypto: malformed ciphertext")
	// ErrDecryptionFailed is returned when authentication of a sealed value fails,
	// including when it is opened with a different associated context.
	ErrDecryptionFailed = errors.New("crypto: decryption failed")
)

// Sealer encrypts short secrets with XChaCha20-Poly1305 under a key derived
// from the configured secret with HKDF-SHA256.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from secret.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, ErrInvalidKey
	}
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("crypto: derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext bound to context and returns base64(nonce || ciphertext).
// The same context must be supplied to Open.
func (s *Sealer) Seal(plaintext, context string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("crypto: init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(context))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (s *Sealer) Open(encoded, context string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("crypto: init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(context))
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
