package domain

import (
	"context"
	"net/http"
)

// CredentialMode controls whether ambient session cookies travel with a request.
type CredentialMode int

const (
	// CredentialsOmit sends the request without any cookies.
	CredentialsOmit CredentialMode = iota
	// CredentialsInclude attaches cookies from the shared session jar.
	CredentialsInclude
)

func (m CredentialMode) String() string {
	if m == CredentialsInclude {
		return "include"
	}
	return "omit"
}

// HTTPRequest describes a single outbound exchange.
type HTTPRequest struct {
	Method      string
	URL         string
	Headers     map[string]string
	Body        any
	Credentials CredentialMode
}

// HTTPAdapter defines the interface for HTTP operations.
// The caller owns the returned response body.
type HTTPAdapter interface {
	Do(ctx context.Context, req HTTPRequest) (*http.Response, error)
}

// SessionStore seeds and inspects the cookies shared by credentialed requests.
type SessionStore interface {
	SeedCookie(rawURL string, cookie *http.Cookie) error
	Cookies(rawURL string) []*http.Cookie
}
