// File: internal/platform/crypto/sealer.go
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealedValueCorrupt is returned when a sealed value cannot be authenticated.
var ErrSealedValueCorrupt = errors.New("sealed value is corrupt or was sealed with another key")

// Sealer encrypts small values (drafts) at rest with XChaCha20-Poly1305.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 256-bit key from secret. The secret must be at least 32 bytes.
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("seal key must be at least 32 bytes, got %d", len(secret))
	}
	key := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("creating xchacha20poly1305 cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce||ciphertext. additionalData binds the value to its key so a
// sealed draft cannot be replayed under another session.
func (s *Sealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize()+s.aead.Overhead() {
		return nil, ErrSealedValueCorrupt
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, ErrSealedValueCorrupt
	}
	return plaintext, nil
}
