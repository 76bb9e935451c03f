package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/passkeeper/passkeeper-server/internal/model"
)

const (
	// KeySize is the required symmetric key length for AES-256-GCM.
	KeySize = 32

	nonceSize = 12
	tagSize   = 16
)

// SecretCipher encrypts and decrypts individual secret values with
// AES-256-GCM. The sealed form is base64(nonce || tag || ciphertext).
// A fresh random nonce is generated per encryption; nonce reuse under
// the same key breaks both confidentiality and authenticity, so nonces
// are never derived or counted.
//
// The cipher is stateless and safe for concurrent use.
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher creates a cipher from a 32-byte key. Any other key
// length is rejected at construction.
func NewSecretCipher(key []byte) (*SecretCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be exactly %d bytes, got %d", model.ErrInvalidInput, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SecretCipher{aead: aead}, nil
}

// Encrypt seals plaintext with an optional associated-data value. The
// associated data is authenticated but not encrypted; it must match
// exactly on decryption. An empty plaintext is valid and round-trips; a
// nil plaintext is rejected.
func (c *SecretCipher) Encrypt(plaintext, associatedData []byte) (string, error) {
	if plaintext == nil {
		return "", fmt.Errorf("%w: plaintext is nil", model.ErrInvalidInput)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the tag after the ciphertext; the stored layout puts
	// the tag between nonce and ciphertext.
	sealed := c.aead.Seal(nil, nonce, plaintext, associatedData)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, nonceSize+tagSize+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ciphertext...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a sealed value produced by Encrypt. The same associated
// data must be supplied. Any tag mismatch, wrong key, wrong associated
// data or corrupted byte anywhere in the payload fails closed with
// model.ErrAuthenticationFailed; no partial plaintext is ever returned.
func (c *SecretCipher) Decrypt(sealed string, associatedData []byte) ([]byte, error) {
	if sealed == "" {
		return nil, fmt.Errorf("%w: sealed value is empty", model.ErrInvalidInput)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: sealed value is not valid base64", model.ErrInvalidInput)
	}
	if len(raw) < nonceSize+tagSize {
		return nil, fmt.Errorf("%w: sealed value is too short", model.ErrInvalidInput)
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	// Rebuild the ciphertext || tag form Open expects.
	buf := make([]byte, 0, len(ciphertext)+tagSize)
	buf = append(buf, ciphertext...)
	buf = append(buf, tag...)

	plaintext, err := c.aead.Open(make([]byte, 0, len(ciphertext)), nonce, buf, associatedData)
	if err != nil {
		return nil, model.ErrAuthenticationFailed
	}

	return plaintext, nil
}
