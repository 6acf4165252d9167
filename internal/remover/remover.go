// Package remover orchestrates a removal run: read the username batch,
// validate and remove each member in order, pace the API calls and record
// every outcome in the audit log.
package remover

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/api"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/audit"
	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/validator"
)

// DefaultDelay is the pause between consecutive API calls.
const DefaultDelay = time.Second

// Remover removes a batch of users from one organization.
type Remover struct {
	client    api.Client
	org       string
	log       *audit.Log
	validator *validator.Validator
	delay     time.Duration

	// sleep is a test seam for the inter-call delay
	sleep func(ctx context.Context, d time.Duration) error
}

// New resolves the organization and returns a Remover. Resolution failure
// aborts here, before any per-user work, wrapping api.ErrOrganizationAccess.
func New(ctx context.Context, client api.Client, org string, log *audit.Log, delay time.Duration) (*Remover, error) {
	if delay < 0 {
		return nil, fmt.Errorf("delay must be non-negative, got %s", delay)
	}

	if err := client.ResolveOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("%w '%s': %v", api.ErrOrganizationAccess, org, err)
	}

	return &Remover{
		client:    client,
		org:       org,
		log:       log,
		validator: validator.New(client, org),
		delay:     delay,
		sleep:     sleepContext,
	}, nil
}

// Validator returns the validator bound to this run's organization.
func (r *Remover) Validator() *validator.Validator {
	return r.validator
}

// ReadUsernames reads usernames from the first column of a CSV file,
// trimming each value and skipping blanks. Order is preserved and
// duplicates are kept.
func (r *Remover) ReadUsernames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("CSV file not found: %s: %w", path, fs.ErrNotExist)
		}

		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	usernames := []string{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
		}

		if len(row) == 0 {
			continue
		}

		username := strings.TrimSpace(row[0])
		if username == "" {
			continue
		}

		usernames = append(usernames, username)
	}

	return usernames, nil
}

// RemoveOne validates and removes a single user. Every outcome is captured
// as an audit record and a boolean; nothing is propagated as an error. An
// invalid username is logged as INVALID without touching the removal API.
func (r *Remover) RemoveOne(ctx context.Context, username string) bool {
	result := r.validator.Validate(ctx, username)
	if !result.Valid {
		r.log.LogRemoval(username, audit.StatusInvalid, result.ErrorMessage, nil)

		return false
	}

	if err := r.client.GetUser(ctx, username); err != nil {
		r.log.LogRemoval(username, audit.StatusFailed, fmt.Sprintf("Failed to remove user: %v", err), nil)

		return false
	}

	if err := r.client.RemoveMember(ctx, r.org, username); err != nil {
		r.log.LogRemoval(username, audit.StatusFailed, fmt.Sprintf("Failed to remove user: %v", err), nil)

		return false
	}

	r.log.LogRemoval(username, audit.StatusSuccess, "", nil)

	return true
}

// RemoveMany processes usernames in input order, pausing for the
// configured delay before the 2nd and subsequent ones. The summary line
// goes to the console sink only, never into the record set.
func (r *Remover) RemoveMany(ctx context.Context, usernames []string) (successCount, failCount int) {
	for i, username := range usernames {
		if err := r.pace(ctx, i); err != nil {
			r.log.Console().Warnf("Removal interrupted: %v", err)
			break
		}

		if r.RemoveOne(ctx, username) {
			successCount++
		} else {
			failCount++
		}
	}

	r.log.Console().Infof("Removal complete. Success: %d, Failed: %d, Total: %d",
		successCount, failCount, len(usernames))

	return successCount, failCount
}

// RemoveFromFile reads a username batch from the CSV at path and removes
// each user. A batch with zero usernames only produces a warning; the log
// file is not written in that case.
func (r *Remover) RemoveFromFile(ctx context.Context, path string) error {
	usernames, err := r.ReadUsernames(path)
	if err != nil {
		return err
	}

	if len(usernames) == 0 {
		r.log.Console().Warnf("No usernames found in %s", path)

		return nil
	}

	r.log.Console().Infof("Removing %d users from %s", len(usernames), r.org)

	r.RemoveMany(ctx, usernames)

	logPath, err := r.log.Save()
	if err != nil {
		return err
	}

	r.log.Console().Infof("Operation log saved to %s", logPath)

	return ctx.Err()
}

// pace blocks for the inter-call delay before the 2nd and subsequent
// usernames. No delay before the first.
func (r *Remover) pace(ctx context.Context, i int) error {
	if i > 0 && r.delay > 0 {
		return r.sleep(ctx, r.delay)
	}

	return ctx.Err()
}

// sleepContext pauses for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
