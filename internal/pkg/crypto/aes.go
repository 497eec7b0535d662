package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when a ciphertext fails authentication
var ErrDecrypt = errors.New("decryption failed")

// AESEncryptor seals authenticator secrets with AES-256-GCM.
// The additional data binds a ciphertext to the row it was written for.
type AESEncryptor struct {
	gcm cipher.AEAD
}

// NewAESEncryptor creates encryptor. Key must be 32 bytes (256 bits)
func NewAESEncryptor(key []byte) (*AESEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be exactly 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &AESEncryptor{gcm: gcm}, nil
}

// ParseKey accepts a 32-byte key as 64 hex chars, standard base64, or raw text.
func ParseKey(s string) ([]byte, error) {
	if len(s) == 64 {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if len(s) == 32 {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("encryption key must decode to 32 bytes")
}

// Encrypt returns base64(nonce + ciphertext + tag)
func (e *AESEncryptor) Encrypt(plaintext, additionalData []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize()) // 12 bytes
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := e.gcm.Seal(nonce, nonce, plaintext, additionalData)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts base64-encoded ciphertext sealed with the same additional data
func (e *AESEncryptor) Decrypt(ciphertextBase64 string, additionalData []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(ciphertext) < e.gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	nonce := ciphertext[:e.gcm.NonceSize()]
	ciphertextOnly := ciphertext[e.gcm.NonceSize():]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertextOnly, additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}
