package api

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// GitHubClient implements Client against the GitHub REST API.
type GitHubClient struct {
	gh *github.Client
}

// NewGitHubClient builds a GitHubClient authenticated with the personal
// access token. baseURL points at a GitHub Enterprise Server API root;
// leave it empty for github.com.
func NewGitHubClient(ctx context.Context, accessToken, baseURL string) (*GitHubClient, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))

	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %s: %w", baseURL, err)
		}
	}

	return &GitHubClient{gh: gh}, nil
}

// ResolveOrganization fetches the organization to prove it exists and the
// token can see it.
func (c *GitHubClient) ResolveOrganization(ctx context.Context, org string) error {
	if _, _, err := c.gh.Organizations.Get(ctx, org); err != nil {
		return err
	}

	return nil
}

// GetUser fetches the user account.
func (c *GitHubClient) GetUser(ctx context.Context, username string) error {
	if _, _, err := c.gh.Users.Get(ctx, username); err != nil {
		return err
	}

	return nil
}

// IsMember reports organization membership. A plain "not a member"
// response is not an error; transport and permission failures are.
func (c *GitHubClient) IsMember(ctx context.Context, org, username string) (bool, error) {
	member, _, err := c.gh.Organizations.IsMember(ctx, org, username)
	if err != nil {
		return false, err
	}

	return member, nil
}

// RemoveMember removes the user from the organization.
func (c *GitHubClient) RemoveMember(ctx context.Context, org, username string) error {
	if _, err := c.gh.Organizations.RemoveMember(ctx, org, username); err != nil {
		return err
	}

	return nil
}
