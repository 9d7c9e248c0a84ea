// Package secretbox encrypts and decrypts short secrets, such as Stripe API
// keys, with AES-256-GCM under a single process-wide key.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// ErrKeyNotSet is returned when the Cipher was built without a key.
var ErrKeyNotSet = errors.New("encryption key not configured: set HELPDESK_STRIPE_APP_KEY")

// CryptoError reports a failed encryption or decryption. A CryptoError means
// the stored value cannot be trusted; callers must not continue as if the
// secret were simply absent.
type CryptoError struct {
	Op  string // "encrypt" or "decrypt"
	Err error
}

func (e *CryptoError) Error() string {
	return "secretbox " + e.Op + ": " + e.Err.Error()
}

func (e *CryptoError) Unwrap() error { return e.Err }

// Cipher seals and opens secrets. It is immutable after construction and
// safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD // nil when no key was configured.
}

// New creates a Cipher. key must be KeySize bytes, or nil to build a Cipher
// whose every operation fails with ErrKeyNotSet.
func New(key []byte) (*Cipher, error) {
	if key == nil {
		return &Cipher{}, nil
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Cipher{aead: gcm}, nil
}

// HasKey reports whether the Cipher can encrypt and decrypt.
func (c *Cipher) HasKey() bool {
	return c.aead != nil
}

// Encrypt seals plaintext and returns a base64-encoded string containing the
// nonce prepended to the ciphertext and tag.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c.aead == nil {
		return "", &CryptoError{Op: "encrypt", Err: ErrKeyNotSet}
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", &CryptoError{Op: "encrypt", Err: fmt.Errorf("rand nonce: %w", err)}
	}

	// nonce || ciphertext || tag
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Every failure, including a
// Cipher without key, is reported as a *CryptoError.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if c.aead == nil {
		return "", &CryptoError{Op: "decrypt", Err: ErrKeyNotSet}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("base64 decode: %w", err)}
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize+c.aead.Overhead() {
		return "", &CryptoError{Op: "decrypt", Err: errors.New("ciphertext too short")}
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("gcm.Open: %w", err)}
	}

	return string(plaintext), nil
}
