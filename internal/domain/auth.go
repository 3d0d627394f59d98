package domain

import "context"

// SessionCookieName is the identity provider's session cookie.
const SessionCookieName = ".ROBLOSECURITY"

// SecretReader handles secure input of secrets such as the session cookie.
type SecretReader interface {
	ReadSecret(ctx context.Context, prompt string) (string, error)
	IsInteractive() bool
}
