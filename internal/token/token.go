// Package token persists the access token encrypted under an
// interactively supplied password.
package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/crypto"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/prompt"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// Store encrypts tokens to and decrypts tokens from files. Passwords come
// from the configured SecretReader, so the interactive flow is testable.
type Store struct {
	secrets prompt.SecretReader
}

// NewStore returns a Store reading passwords from secrets.
func NewStore(secrets prompt.SecretReader) *Store {
	return &Store{secrets: secrets}
}

// SaveEncrypted prompts twice for a password, encrypts the token and writes
// the blob to path, creating parent directories and overwriting any
// existing file.
func (s *Store) SaveEncrypted(token, path string) error {
	password, err := s.secrets.ReadSecret("Enter password to encrypt GitHub token: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := s.secrets.ReadSecret("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}

	if password != confirm {
		return ErrPasswordMismatch
	}

	blob, err := crypto.Encrypt([]byte(token), password)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, blob, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// LoadEncrypted reads the blob at path, prompts once for the password and
// returns the decrypted token.
func (s *Store) LoadEncrypted(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	password, err := s.secrets.ReadSecret("Enter password to decrypt GitHub token: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	token, err := crypto.Decrypt(blob, password)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}

	return string(token), nil
}
