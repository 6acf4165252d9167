package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/config"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/token"
)

// runEncryptToken reads a token from standard input, encrypts it under a
// twice-prompted password and writes it to the token file.
func runEncryptToken(cmd *cobra.Command, cfg *config.Config, deps Deps) error {
	if cfg.TokenFile == "" {
		return errors.New("--token-file is required with --encrypt-token")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Enter the GitHub token to encrypt:")

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read token: %w", err)
	}

	accessToken := strings.TrimSpace(line)
	if accessToken == "" {
		return errors.New("token cannot be empty")
	}

	store := token.NewStore(deps.Secrets)
	if err := store.SaveEncrypted(accessToken, cfg.TokenFile); err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token encrypted and saved to %s\n", cfg.TokenFile)

	return nil
}
