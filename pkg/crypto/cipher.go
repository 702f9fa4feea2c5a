package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
)

// ErrCiphertextTooShort is returned when a payload cannot hold a nonce.
var ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")

// Sealer encrypts small values (phone numbers, notes) with AES-256-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 32 byte key from secret with SHA-256.
func NewSealer(secret string) (*Sealer, error) {
	sum := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: gcm}, nil
}

// Seal returns nonce||ciphertext. Empty input yields nil so optional
// columns stay NULL.
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", nil
	}
	nonceSize := s.aead.NonceSize()
	if len(payload) < nonceSize {
		return "", ErrCiphertextTooShort
	}
	plain, err := s.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
