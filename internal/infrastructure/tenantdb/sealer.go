package tenantdb

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedPrefix marks a directory password encrypted with a Sealer
const SealedPrefix = "enc:v1:"

// ErrNoDirectoryKey is returned when a sealed password is found but no
// directory key is configured
var ErrNoDirectoryKey = errors.New("sealed directory password but no directory key configured")

// Sealer encrypts and decrypts directory passwords with XChaCha20-Poly1305.
// Sealed values are "enc:v1:" + base64(nonce || ciphertext).
type Sealer struct {
	key []byte
}

// NewSealer creates a sealer for a 32 byte key
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("directory key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Sealer{key: k}, nil
}

// IsSealed reports whether stored carries the sealed prefix
func IsSealed(stored string) bool {
	return strings.HasPrefix(stored, SealedPrefix)
}

// Seal encrypts a plaintext password
func (s *Sealer) Seal(plain string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Unseal returns the plaintext password. Values without the sealed prefix
// are legacy plaintext and returned unchanged. A nil Sealer can only
// return plaintext values.
func (s *Sealer) Unseal(stored string) (string, error) {
	if !IsSealed(stored) {
		return stored, nil
	}
	if s == nil {
		return "", ErrNoDirectoryKey
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed password: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", errors.New("sealed password too short")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.New("sealed password could not be decrypted")
	}
	return string(plain), nil
}
