// Package validator checks usernames for syntactic validity and live
// membership in the target organization before any removal is attempted.
package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vicdotdevelop/remove-users-from-github-org-script/internal/api"
)

// GitHub usernames are alphanumeric with single hyphens between
// alphanumeric runs (no leading, trailing or doubled hyphens) and at most
// 39 characters long.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)

const maxUsernameLength = 39

// Result is the outcome of validating one username. ErrorMessage is set
// iff Valid is false.
type Result struct {
	Username     string
	Valid        bool
	ErrorMessage string
}

// Validator validates usernames against the format rules and the
// membership list of one organization.
type Validator struct {
	client api.Client
	org    string
}

// New returns a Validator for the named organization.
func New(client api.Client, org string) *Validator {
	return &Validator{client: client, org: org}
}

// IsValidFormat reports whether the username satisfies the format rules.
func (v *Validator) IsValidFormat(username string) bool {
	if username == "" || len(username) > maxUsernameLength {
		return false
	}

	return usernamePattern.MatchString(username)
}

// IsOrgMember reports whether the user is a member of the organization.
// Any API error is treated as "not a member".
func (v *Validator) IsOrgMember(ctx context.Context, username string) bool {
	member, err := v.client.IsMember(ctx, v.org, username)
	if err != nil {
		return false
	}

	return member
}

// Validate checks one username for format and membership. The username is
// trimmed first; all failures are reported through the Result, never as an
// error.
func (v *Validator) Validate(ctx context.Context, username string) Result {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return Result{Username: trimmed, ErrorMessage: "Username is empty or not a string"}
	}

	if !v.IsValidFormat(trimmed) {
		return Result{Username: trimmed, ErrorMessage: fmt.Sprintf("Invalid username format: '%s'", trimmed)}
	}

	member, err := v.client.IsMember(ctx, v.org, trimmed)
	if err != nil {
		return Result{Username: trimmed, ErrorMessage: fmt.Sprintf("Error checking membership for '%s': %v", trimmed, err)}
	}

	if !member {
		return Result{Username: trimmed, ErrorMessage: fmt.Sprintf("User '%s' is not a member of organization '%s'", trimmed, v.org)}
	}

	return Result{Username: trimmed, Valid: true}
}

// ValidateBatch validates usernames in input order.
func (v *Validator) ValidateBatch(ctx context.Context, usernames []string) []Result {
	results := make([]Result, 0, len(usernames))

	for _, username := range usernames {
		results = append(results, v.Validate(ctx, username))
	}

	return results
}
