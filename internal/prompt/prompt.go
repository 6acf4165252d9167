package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests it can be replaced with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// ErrNoSecret is returned by Static when its queue is exhausted.
var ErrNoSecret = errors.New("no secret available")

// SecretReader reads a secret without echoing it back to the user.
// Implementations decide where the prompt goes and where the secret
// comes from, so interactive input can be swapped out in tests.
type SecretReader interface {
	ReadSecret(prompt string) (string, error)
}

// Terminal reads secrets from the controlling terminal with echo disabled.
// The prompt is written to Out (stderr when nil).
type Terminal struct {
	Out io.Writer
}

// ReadSecret prints the prompt and reads a password from the terminal.
// A trailing newline is printed after the read.
func (t *Terminal) ReadSecret(prompt string) (string, error) {
	out := t.Out
	if out == nil {
		out = os.Stderr
	}

	if _, err := fmt.Fprint(out, prompt); err != nil {
		return "", err
	}

	secret, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return string(secret), nil
}

// Static returns queued secrets in order. It is the deterministic
// SecretReader used by tests and non-interactive callers.
type Static struct {
	Secrets []string

	next int
}

// ReadSecret pops the next queued secret, ignoring the prompt.
func (s *Static) ReadSecret(string) (string, error) {
	if s.next >= len(s.Secrets) {
		return "", ErrNoSecret
	}

	secret := s.Secrets[s.next]
	s.next++

	return secret, nil
}
