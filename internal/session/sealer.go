package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const sealedPrefix = "xc1:"

// ErrUnsealable is returned when a stored token cannot be opened.
var ErrUnsealable = errors.New("stored token cannot be unsealed")

// Sealer protects tokens at rest. The phone number is bound as associated
// data so a sealed token cannot be replayed into another row.
type Sealer interface {
	Seal(phoneNumber, token string) (string, error)
	Open(phoneNumber, stored string) (string, error)
}

type plainSealer struct{}

// PlainSealer stores tokens as-is.
func PlainSealer() Sealer { return plainSealer{} }

func (plainSealer) Seal(_, token string) (string, error) { return token, nil }

func (plainSealer) Open(_, stored string) (string, error) {
	if strings.HasPrefix(stored, sealedPrefix) {
		return "", fmt.Errorf("%w: sealed token without key", ErrUnsealable)
	}
	return stored, nil
}

// XChaChaSealer seals tokens with XChaCha20-Poly1305.
type XChaChaSealer struct {
	key []byte
}

// NewXChaChaSealer builds a sealer from a 32 byte key.
func NewXChaChaSealer(key []byte) (*XChaChaSealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &XChaChaSealer{key: k}, nil
}

// Seal encrypts token and returns a printable envelope.
func (s *XChaChaSealer) Seal(phoneNumber, token string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(token)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(token), []byte(phoneNumber))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Unsealed legacy values pass through.
func (s *XChaChaSealer) Open(phoneNumber, stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsealable, err)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%w: short envelope", ErrUnsealable)
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(phoneNumber))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsealable, err)
	}
	return string(plain), nil
}
