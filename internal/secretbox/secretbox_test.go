package secretbox_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

func testKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, secretbox.KeySize)
}

func newCipher(t *testing.T, fill byte) *secretbox.Cipher {
	t.Helper()
	c, err := secretbox.New(testKey(fill))
	require.NoError(t, err)
	return c
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newCipher(t, 0x01)
	assert.True(t, c.HasKey())

	for _, plaintext := range []string{"sk_test_51Habc", "rk_live_xyz", "", "ünïcødé"} {
		encrypted, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := c.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestCipher_DecryptThenEncryptIsIdempotent(t *testing.T) {
	c := newCipher(t, 0x02)

	stored, err := c.Encrypt("sk_test_roundtrip")
	require.NoError(t, err)

	plaintext, err := c.Decrypt(stored)
	require.NoError(t, err)

	reencrypted, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	again, err := c.Decrypt(reencrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, again)
}

func TestCipher_EncryptUsesFreshNonce(t *testing.T) {
	c := newCipher(t, 0x03)

	a, err := c.Encrypt("sk_test_same")
	require.NoError(t, err)
	b, err := c.Encrypt("sk_test_same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCipher_DecryptWithWrongKey(t *testing.T) {
	encrypted, err := newCipher(t, 0x04).Encrypt("sk_test_secret")
	require.NoError(t, err)

	plaintext, err := newCipher(t, 0x05).Decrypt(encrypted)

	require.Error(t, err)
	assert.Empty(t, plaintext)
	var cryptoErr *secretbox.CryptoError
	require.ErrorAs(t, err, &cryptoErr)
	assert.Equal(t, "decrypt", cryptoErr.Op)
}

func TestCipher_DecryptCorruptedCiphertext(t *testing.T) {
	c := newCipher(t, 0x06)
	encrypted, err := c.Encrypt("sk_test_secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	corrupted := base64.StdEncoding.EncodeToString(raw)

	plaintext, err := c.Decrypt(corrupted)

	assert.Empty(t, plaintext)
	var cryptoErr *secretbox.CryptoError
	assert.ErrorAs(t, err, &cryptoErr)
}

func TestCipher_DecryptMalformedInput(t *testing.T) {
	c := newCipher(t, 0x07)

	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "%%%not-base64%%%"},
		{name: "too short", input: base64.StdEncoding.EncodeToString([]byte("short"))},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.input)
			var cryptoErr *secretbox.CryptoError
			assert.ErrorAs(t, err, &cryptoErr)
		})
	}
}

func TestCipher_NilKey(t *testing.T) {
	c, err := secretbox.New(nil)
	require.NoError(t, err)
	assert.False(t, c.HasKey())

	_, err = c.Encrypt("sk_test_x")
	assert.True(t, errors.Is(err, secretbox.ErrKeyNotSet))

	_, err = c.Decrypt("anything")
	assert.True(t, errors.Is(err, secretbox.ErrKeyNotSet))
	var cryptoErr *secretbox.CryptoError
	assert.ErrorAs(t, err, &cryptoErr)
}

func TestNew_RejectsWrongKeySize(t *testing.T) {
	_, err := secretbox.New([]byte("too-short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}
