// Package api talks to the organization-membership API. The Client
// interface is the only surface the rest of the tool depends on, so the
// networked GitHub implementation can be swapped for a fake in tests.
package api

import (
	"context"
	"errors"
)

// ErrOrganizationAccess indicates the target organization could not be
// resolved with the supplied credentials.
var ErrOrganizationAccess = errors.New("could not access organization")

// Client defines the interface for organization-membership operations
type Client interface {
	// ResolveOrganization checks that the organization exists and is
	// accessible with the configured credentials
	ResolveOrganization(ctx context.Context, org string) error

	// GetUser checks that the named user account exists
	GetUser(ctx context.Context, username string) error

	// IsMember reports whether the user is a member of the organization
	IsMember(ctx context.Context, org, username string) (bool, error)

	// RemoveMember revokes the user's membership in the organization
	RemoveMember(ctx context.Context, org, username string) error
}
