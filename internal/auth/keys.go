package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrUnsealFailed is returned when a sealed value was tampered with or sealed under another key.
var ErrUnsealFailed = errors.New("unseal failed")

// Keys are the per-purpose keys derived from the single configured secret.
type Keys struct {
	Signing []byte
	Sealing [32]byte
}

// DeriveKeys expands secret into independent signing and sealing keys.
func DeriveKeys(secret string) (Keys, error) {
	var k Keys
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("loyalty-console session v1"))
	k.Signing = make([]byte, 32)
	if _, err := io.ReadFull(r, k.Signing); err != nil {
		return Keys{}, fmt.Errorf("derive signing key: %w", err)
	}
	if _, err := io.ReadFull(r, k.Sealing[:]); err != nil {
		return Keys{}, fmt.Errorf("derive sealing key: %w", err)
	}
	return k, nil
}

// Sealer encrypts short secrets (the backend bearer token) before they leave the server.
type Sealer struct {
	key [32]byte
}

// NewSealer returns a Sealer using key.
func NewSealer(key [32]byte) *Sealer {
	return &Sealer{key: key}
}

// Seal encrypts plaintext and returns nonce||box as URL-safe base64.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < 24+secretbox.Overhead {
		return "", ErrUnsealFailed
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealFailed
	}
	return string(plain), nil
}

// NewCSRFToken returns 32 random bytes encoded as URL-safe base64.
func NewCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read csrf bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
