package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/audit"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/config"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/remover"
)

// runDryRun validates every username in the batch and prints a per-user
// report without touching the removal API. The audit log is still saved,
// holding no removal records.
func runDryRun(cmd *cobra.Command, rem *remover.Remover, log *audit.Log, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "DRY RUN: Would remove users from organization %s\n", cfg.OrgName)

	usernames, err := rem.ReadUsernames(cfg.InputFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Found %d usernames in %s\n", len(usernames), cfg.InputFile)
	fmt.Fprintln(out, "Validating usernames...")

	validCount := 0
	for _, username := range usernames {
		result := rem.Validator().Validate(ctx, username)
		if result.Valid {
			validCount++
			fmt.Fprintf(out, "%s %s\n", color.GreenString("✓"), username)
		} else {
			fmt.Fprintf(out, "%s %s: %s\n", color.RedString("✗"), username, result.ErrorMessage)
		}
	}

	fmt.Fprintf(out, "\nValidation complete. Valid: %d, Invalid: %d\n", validCount, len(usernames)-validCount)

	if _, err := log.Save(); err != nil {
		return err
	}

	return nil
}
