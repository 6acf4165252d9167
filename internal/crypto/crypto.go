package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2-SHA256 parameters
	KDFIterations = 480000
	KeyLength     = 32 // 256 bits for AES-256

	// Salt length prepended to every encrypted blob
	SaltLength = 16 // 128 bits

	// AES-GCM nonce size
	NonceSize = 12 // 96 bits (standard for GCM)
)

var (
	ErrDecryptionFailed   = errors.New("decryption failed")
	ErrCiphertextTooShort = fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
)

// GenerateSalt generates a cryptographically secure random salt
func GenerateSalt(length int) ([]byte, error) {
	salt := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return salt, nil
}

// DeriveKey derives an AES-256 key from a password using PBKDF2-SHA256
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, KDFIterations, KeyLength, sha256.New)
}

// Encrypt encrypts plaintext with a key derived from the password.
// The returned blob is salt || nonce || ciphertext, so decryption only
// needs the password.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	salt, err := GenerateSalt(SaltLength)
	if err != nil {
		return nil, err
	}

	return EncryptWithSalt(plaintext, password, salt)
}

// EncryptWithSalt encrypts plaintext using the provided salt for key
// derivation. The salt must be SaltLength bytes.
func EncryptWithSalt(plaintext []byte, password string, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltLength, len(salt))
	}

	nonce, err := GenerateSalt(NonceSize)
	if err != nil {
		return nil, err
	}

	key := DeriveKey(password, salt)

	ciphertext, err := encryptAESGCM(plaintext, key, nonce)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, SaltLength+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, ciphertext...)

	return blob, nil
}

// Decrypt splits the salt off the blob, derives the key and decrypts.
// Returns ErrCiphertextTooShort for truncated blobs and ErrDecryptionFailed
// for a wrong password or tampered ciphertext.
func Decrypt(blob []byte, password string) ([]byte, error) {
	if len(blob) < SaltLength+NonceSize {
		return nil, ErrCiphertextTooShort
	}

	salt := blob[:SaltLength]
	ciphertext := blob[SaltLength:]

	key := DeriveKey(password, salt)

	nonce := ciphertext[:NonceSize]

	return decryptAESGCM(ciphertext, key, nonce)
}

// encryptAESGCM performs the actual AES-GCM encryption
// Nonce is prepended to the ciphertext
func encryptAESGCM(plaintext []byte, key []byte, nonce []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)

	return ciphertext, nil
}

// decryptAESGCM performs the actual AES-GCM decryption
// Expects nonce to be prepended to ciphertext
func decryptAESGCM(ciphertext []byte, key []byte, nonce []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize {
		return nil, ErrCiphertextTooShort
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	actualCiphertext := ciphertext[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, actualCiphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}
