package api

import (
	"context"
	"fmt"
)

// Fake is an in-memory Client for tests. Fields are exported so tests can
// seed memberships and force failures directly.
type Fake struct {
	// Orgs holds the organizations the credentials can access
	Orgs map[string]bool

	// Users holds the user accounts that exist
	Users map[string]bool

	// Members holds "org/username" membership pairs
	Members map[string]bool

	// MembershipErr forces IsMember to fail for a username
	MembershipErr map[string]error

	// RemoveErr forces RemoveMember to fail for a username
	RemoveErr map[string]error

	// Removed records successfully removed usernames in call order
	Removed []string

	// Calls records every API call in order
	Calls []string
}

// NewFake returns a Fake with one accessible organization whose members
// all exist as user accounts.
func NewFake(org string, members ...string) *Fake {
	f := &Fake{
		Orgs:          map[string]bool{org: true},
		Users:         map[string]bool{},
		Members:       map[string]bool{},
		MembershipErr: map[string]error{},
		RemoveErr:     map[string]error{},
	}

	for _, username := range members {
		f.Users[username] = true
		f.Members[memberKey(org, username)] = true
	}

	return f
}

func memberKey(org, username string) string {
	return org + "/" + username
}

func (f *Fake) ResolveOrganization(_ context.Context, org string) error {
	f.Calls = append(f.Calls, "ResolveOrganization "+org)

	if !f.Orgs[org] {
		return fmt.Errorf("GET /orgs/%s: 404 Not Found", org)
	}

	return nil
}

func (f *Fake) GetUser(_ context.Context, username string) error {
	f.Calls = append(f.Calls, "GetUser "+username)

	if !f.Users[username] {
		return fmt.Errorf("GET /users/%s: 404 Not Found", username)
	}

	return nil
}

func (f *Fake) IsMember(_ context.Context, org, username string) (bool, error) {
	f.Calls = append(f.Calls, fmt.Sprintf("IsMember %s %s", org, username))

	if err := f.MembershipErr[username]; err != nil {
		return false, err
	}

	return f.Members[memberKey(org, username)], nil
}

func (f *Fake) RemoveMember(_ context.Context, org, username string) error {
	f.Calls = append(f.Calls, fmt.Sprintf("RemoveMember %s %s", org, username))

	if err := f.RemoveErr[username]; err != nil {
		return err
	}

	key := memberKey(org, username)
	if !f.Members[key] {
		return fmt.Errorf("DELETE /orgs/%s/members/%s: 404 Not Found", org, username)
	}

	delete(f.Members, key)
	f.Removed = append(f.Removed, username)

	return nil
}
