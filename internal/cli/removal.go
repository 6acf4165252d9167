package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/audit"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/config"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/remover"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/token"
)

// runRemoval performs a removal run (or its dry-run variant): resolve the
// token, build the client and orchestrator, then process the batch.
func runRemoval(cmd *cobra.Command, cfg *config.Config, deps Deps) error {
	if cfg.OrgName == "" {
		return errors.New("--org-name is required")
	}
	if cfg.InputFile == "" {
		return errors.New("--input-file is required")
	}
	if cfg.TokenFile == "" && cfg.EnvToken == "" {
		return errors.New("either --token-file or --env-token is required")
	}
	if cfg.TokenFile != "" && cfg.EnvToken != "" {
		return errors.New("--token-file and --env-token are mutually exclusive")
	}

	accessToken, err := resolveToken(cfg, deps)
	if err != nil {
		return err
	}

	console := newConsole(cfg.Verbose)

	log, err := audit.New(cfg.LogFormat, cfg.LogDir, console)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	client, err := deps.NewClient(ctx, accessToken, cfg.BaseURL)
	if err != nil {
		return err
	}

	delay := time.Duration(cfg.Delay * float64(time.Second))

	rem, err := remover.New(ctx, client, cfg.OrgName, log, delay)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		return runDryRun(cmd, rem, log, cfg)
	}

	return rem.RemoveFromFile(ctx, cfg.InputFile)
}

// resolveToken loads the access token from the encrypted file or the
// named environment variable.
func resolveToken(cfg *config.Config, deps Deps) (string, error) {
	if cfg.TokenFile != "" {
		if _, err := os.Stat(cfg.TokenFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("token file not found: %s", cfg.TokenFile)
			}

			return "", err
		}

		store := token.NewStore(deps.Secrets)

		accessToken, err := store.LoadEncrypted(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to load token from file: %w", err)
		}

		return accessToken, nil
	}

	accessToken := os.Getenv(cfg.EnvToken)
	if accessToken == "" {
		return "", fmt.Errorf("environment variable %s not found or empty", cfg.EnvToken)
	}

	return accessToken, nil
}
