package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// SessionCookieEnv supplies the session cookie without prompting.
const SessionCookieEnv = "BOOTBRIDGE_SESSION_COOKIE"

// Adapter handles secure secret input from terminal.
type Adapter struct {
	stdin  io.Reader
	stderr io.Writer
	getenv func(string) string
}

// NewAdapter creates a new terminal adapter.
func NewAdapter(stdin io.Reader, stderr io.Writer) *Adapter {
	return &Adapter{
		stdin:  stdin,
		stderr: stderr,
		getenv: os.Getenv,
	}
}

// ReadSecret reads a secret from the terminal with echo disabled.
func (a *Adapter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	// Environment first, so scripted runs never block on a prompt.
	if secret := strings.TrimSpace(a.getenv(SessionCookieEnv)); secret != "" {
		return secret, nil
	}

	if !a.IsInteractive() {
		return "", errors.New("cannot read secret: non-interactive terminal")
	}

	fmt.Fprint(a.stderr, prompt)

	file, ok := a.stdin.(*os.File)
	if !ok {
		return "", errors.New("cannot read secret from non-terminal input")
	}

	secret, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// IsInteractive returns true if the terminal is interactive.
func (a *Adapter) IsInteractive() bool {
	if file, ok := a.stdin.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
