package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passkeeper/passkeeper-server/internal/model"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewSecretCipher_KeyLength(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{name: "16 byte key rejected", keyLen: 16, wantErr: true},
		{name: "24 byte key rejected", keyLen: 24, wantErr: true},
		{name: "31 byte key rejected", keyLen: 31, wantErr: true},
		{name: "32 byte key accepted", keyLen: 32, wantErr: false},
		{name: "48 byte key rejected", keyLen: 48, wantErr: true},
		{name: "empty key rejected", keyLen: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewSecretCipher(make([]byte, tt.keyLen))
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrInvalidInput)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestSecretCipher_RoundTrip(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	tests := []struct {
		name           string
		plaintext      []byte
		associatedData []byte
	}{
		{name: "simple value", plaintext: []byte("p@ssw0rd-of-some-site")},
		{name: "empty plaintext", plaintext: []byte{}},
		{name: "binary plaintext", plaintext: []byte{0x00, 0xff, 0x10, 0x80}},
		{name: "with associated data", plaintext: []byte("secret"), associatedData: []byte("entry-42")},
		{name: "empty plaintext with associated data", plaintext: []byte{}, associatedData: []byte("entry-42")},
		{name: "long plaintext", plaintext: bytes.Repeat([]byte("a"), 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := c.Encrypt(tt.plaintext, tt.associatedData)
			require.NoError(t, err)
			require.NotEmpty(t, sealed)

			got, err := c.Decrypt(sealed, tt.associatedData)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.plaintext, got))
		})
	}
}

func TestSecretCipher_Encrypt_NilPlaintext(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	_, err = c.Encrypt(nil, nil)
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSecretCipher_SealedLayout(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	plaintext := []byte("layout check")
	sealed, err := c.Encrypt(plaintext, nil)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	// nonce(12) || tag(16) || ciphertext(len(plaintext))
	assert.Equal(t, nonceSize+tagSize+len(plaintext), len(raw))
}

func TestSecretCipher_TamperDetection(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	sealed, err := c.Encrypt([]byte("do not tamper"), nil)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)

	// Flip a single bit in every byte position: nonce, tag and
	// ciphertext must all be covered by the authenticator.
	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered), nil)
		require.ErrorIs(t, err, model.ErrAuthenticationFailed, "byte %d", i)
	}
}

func TestSecretCipher_AssociatedDataBinding(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	sealed, err := c.Encrypt([]byte("bound secret"), []byte("A"))
	require.NoError(t, err)

	_, err = c.Decrypt(sealed, []byte("B"))
	require.ErrorIs(t, err, model.ErrAuthenticationFailed)

	_, err = c.Decrypt(sealed, nil)
	require.ErrorIs(t, err, model.ErrAuthenticationFailed)
}

func TestSecretCipher_WrongKey(t *testing.T) {
	c1, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)
	c2, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	sealed, err := c1.Encrypt([]byte("secret"), nil)
	require.NoError(t, err)

	_, err = c2.Decrypt(sealed, nil)
	require.ErrorIs(t, err, model.ErrAuthenticationFailed)
}

func TestSecretCipher_NonceUniqueness(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		sealed, err := c.Encrypt([]byte("same plaintext"), nil)
		require.NoError(t, err)

		_, dup := seen[sealed]
		require.False(t, dup, "sealed output repeated")
		seen[sealed] = struct{}{}
	}
}

func TestSecretCipher_Decrypt_MalformedInput(t *testing.T) {
	c, err := NewSecretCipher(testKey(t))
	require.NoError(t, err)

	tests := []struct {
		name   string
		sealed string
	}{
		{name: "empty", sealed: ""},
		{name: "not base64", sealed: "%%%not-base64%%%"},
		{name: "too short", sealed: base64.StdEncoding.EncodeToString(make([]byte, nonceSize+tagSize-1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.sealed, nil)
			require.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}
