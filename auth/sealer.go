package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrUnseal = errors.New("auth: sealed value is invalid")

// Sealer encrypts stored passwords with XChaCha20-Poly1305. The key is
// derived from the session secret so the cookie signing key differs.
type Sealer struct {
	key []byte
}

func NewSealer(secret string) (*Sealer, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("kpitter credential sealing"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal binds the ciphertext to the session id so rows cannot be swapped.
func (s *Sealer) Seal(sessionID, plaintext string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, []byte(plaintext), []byte(sessionID)), nil
}

func (s *Sealer) Open(sessionID string, sealed []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", ErrUnseal
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(sessionID))
	if err != nil {
		return "", ErrUnseal
	}
	return string(plaintext), nil
}
