package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewAESEncryptor_InvalidKeyLength(t *testing.T) {
	testCases := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{"too short", 16, true},
		{"too long", 64, true},
		{"empty", 0, true},
		{"valid", 32, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAESEncryptor(make([]byte, tc.keyLen))
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	key := testKey()

	fromHex, err := ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromHex)

	fromB64, err := ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromB64)

	raw, err := ParseKey("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = ParseKey("short")
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	enc, err := NewAESEncryptor(testKey())
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{"simple text", []byte("Hello, World!")},
		{"empty", []byte("")},
		{"binary data", []byte{0x00, 0x01, 0x02, 0xFF, 0xFE}},
		{"totp secret", []byte("JBSWY3DPEHPK3PXP")},
	}

	aad := []byte("3f2b9c1e-account")
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := enc.Encrypt(tc.plaintext, aad)
			require.NoError(t, err)

			decrypted, err := enc.Decrypt(ciphertext, aad)
			require.NoError(t, err)
			assert.Equal(t, string(tc.plaintext), string(decrypted))
		})
	}
}

func TestDecrypt_WrongAdditionalData(t *testing.T) {
	enc, err := NewAESEncryptor(testKey())
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt([]byte("JBSWY3DPEHPK3PXP"), []byte("account-a"))
	require.NoError(t, err)

	_, err = enc.Decrypt(ciphertext, []byte("account-b"))
	assert.True(t, errors.Is(err, ErrDecrypt))
}

func TestEncrypt_UniqueNonce(t *testing.T) {
	enc, _ := NewAESEncryptor(make([]byte, 32))

	results := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ciphertext, err := enc.Encrypt([]byte("test"), nil)
		require.NoError(t, err)
		assert.False(t, results[ciphertext], "duplicate ciphertext detected, nonce not unique")
		results[ciphertext] = true
	}
}

func TestDecrypt_InvalidCiphertext(t *testing.T) {
	enc, _ := NewAESEncryptor(make([]byte, 32))

	testCases := []struct {
		name       string
		ciphertext string
	}{
		{"invalid base64", "not-valid-base64!!!"},
		{"too short", "YWJjZA=="}, // "abcd" in base64
		{"tampered", "YWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXo="},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := enc.Decrypt(tc.ciphertext, nil)
			assert.Error(t, err)
		})
	}
}
