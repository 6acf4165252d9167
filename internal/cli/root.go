// Package cli wires the flag surface to the token, validation and removal
// machinery. Everything interactive or networked comes in through Deps so
// commands can be exercised in tests.
package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/api"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/config"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/prompt"
)

// Deps holds the substitutable collaborators of the command.
type Deps struct {
	// Secrets reads the passwords protecting the token file
	Secrets prompt.SecretReader

	// NewClient builds the membership API client for a run
	NewClient func(ctx context.Context, accessToken, baseURL string) (api.Client, error)
}

// DefaultDeps returns the production collaborators: terminal password
// input and the GitHub REST client.
func DefaultDeps() Deps {
	return Deps{
		Secrets: &prompt.Terminal{},
		NewClient: func(ctx context.Context, accessToken, baseURL string) (api.Client, error) {
			return api.NewGitHubClient(ctx, accessToken, baseURL)
		},
	}
}

// NewRootCommand creates the orgrm command.
func NewRootCommand(deps Deps, version string) *cobra.Command {
	var (
		configFile   string
		orgName      string
		inputFile    string
		tokenFile    string
		envToken     string
		encryptToken bool
		logFormat    string
		logDir       string
		delay        float64
		dryRun       bool
		baseURL      string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "orgrm",
		Short: "Bulk-remove users from a GitHub organization",
		Long: `orgrm removes a CSV-listed batch of users from a GitHub organization.
Every username is validated for format and current membership before the
removal call, and every outcome is written to a JSON or CSV audit log.

The access token is read from a password-encrypted file or from an
environment variable.`,
		Example: `  # Remove users using token from file
  orgrm --org-name my-enterprise-org --input-file users_to_remove.csv --token-file github_token.enc

  # Remove users using token from environment variable
  orgrm --org-name my-enterprise-org --input-file users_to_remove.csv --env-token GITHUB_TOKEN

  # Encrypt a token to a file
  orgrm --encrypt-token --token-file github_token.enc`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("org-name") {
				cfg.OrgName = orgName
			}
			if flags.Changed("input-file") {
				cfg.InputFile = inputFile
			}
			if flags.Changed("token-file") {
				cfg.TokenFile = tokenFile
			}
			if flags.Changed("env-token") {
				cfg.EnvToken = envToken
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("log-dir") {
				cfg.LogDir = logDir
			}
			if flags.Changed("delay") {
				cfg.Delay = delay
			}
			if flags.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			cfg.DryRun = dryRun
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if encryptToken {
				return runEncryptToken(cmd, cfg, deps)
			}

			return runRemoval(cmd, cfg, deps)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Config file path")
	cmd.Flags().StringVar(&orgName, "org-name", "", "GitHub organization name [env: ORGRM_ORG_NAME]")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "CSV file containing usernames to remove")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "File containing encrypted GitHub token")
	cmd.Flags().StringVar(&envToken, "env-token", "", "Environment variable name containing GitHub token")
	cmd.Flags().BoolVar(&encryptToken, "encrypt-token", false, "Encrypt a GitHub token to a file")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Format for log output (json or csv) [env: ORGRM_LOG_FORMAT]")
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "Directory to store log files [env: ORGRM_LOG_DIR]")
	cmd.Flags().Float64Var(&delay, "delay", 1.0, "Delay in seconds between API calls to avoid rate limiting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate inputs but don't actually remove users")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "GitHub Enterprise Server API base URL (default: github.com)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// newConsole builds the per-run console sink. Records echo here; the run
// id ties the lines of one run together.
func newConsole(verbose bool) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger.WithField("run_id", uuid.NewString())
}
