package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const identityKeyInfo = "surveyhub identity v1"

// HashIdentity returns the hex sha256 of the identity text. Equal identities
// hash equal, which is what duplicate prevention compares.
func HashIdentity(info string) string {
	sum := sha256.Sum256([]byte(info))
	return hex.EncodeToString(sum[:])
}

// IdentitySealer encrypts identity text before it is stored.
type IdentitySealer struct {
	key []byte
}

func NewIdentitySealer(secret string) (*IdentitySealer, error) {
	if secret == "" {
		return nil, ErrInvalidIdentityKey
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(identityKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive identity key: %w", err)
	}
	return &IdentitySealer{key: key}, nil
}

// Seal returns base64(nonce || ciphertext) using XChaCha20-Poly1305.
func (s *IdentitySealer) Seal(info string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(info)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(info), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *IdentitySealer) Open(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("identity blob too short")
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
