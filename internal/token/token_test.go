package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/crypto"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/prompt"
)

func TestSaveAndLoadEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_token.enc")

	store := NewStore(&prompt.Static{Secrets: []string{
		"s3cret", "s3cret", // save: password + confirmation
		"s3cret", // load
	}})

	err := store.SaveEncrypted("ghp_abc123", path)
	require.NoError(t, err)

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(blob), crypto.SaltLength+crypto.NonceSize)

	token, err := store.LoadEncrypted(path)
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc123", token)
}

func TestSaveEncryptedPasswordMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_token.enc")

	store := NewStore(&prompt.Static{Secrets: []string{"one", "two"}})

	err := store.SaveEncrypted("ghp_abc123", path)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	// Nothing should have been written
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveEncryptedCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "github_token.enc")

	store := NewStore(&prompt.Static{Secrets: []string{"pw", "pw"}})

	err := store.SaveEncrypted("ghp_abc123", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveEncryptedOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_token.enc")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0600))

	store := NewStore(&prompt.Static{Secrets: []string{"pw", "pw", "pw"}})

	require.NoError(t, store.SaveEncrypted("ghp_new", path))

	token, err := store.LoadEncrypted(path)
	require.NoError(t, err)
	assert.Equal(t, "ghp_new", token)
}

func TestLoadEncryptedWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_token.enc")

	save := NewStore(&prompt.Static{Secrets: []string{"right", "right"}})
	require.NoError(t, save.SaveEncrypted("ghp_abc123", path))

	load := NewStore(&prompt.Static{Secrets: []string{"wrong"}})
	_, err := load.LoadEncrypted(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	assert.Contains(t, err.Error(), "failed to decrypt token")
}

func TestLoadEncryptedMissingFile(t *testing.T) {
	store := NewStore(&prompt.Static{Secrets: []string{"pw"}})

	_, err := store.LoadEncrypted(filepath.Join(t.TempDir(), "missing.enc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEncryptedTruncatedBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_token.enc")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	store := NewStore(&prompt.Static{Secrets: []string{"pw"}})

	_, err := store.LoadEncrypted(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrCiphertextTooShort)
}
