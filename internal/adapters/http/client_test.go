package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootbridge/internal/domain"
	"bootbridge/internal/testutil"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(Options{Timeout: 5 * time.Second}, testutil.Logger())
	require.NoError(t, err)
	return adapter
}

func TestAdapter_Do_SendsMethodHeadersAndJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "https://www.roblox.com", r.Header.Get("Referer"))
		assert.Equal(t, "application/json;charset=UTF-8", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ticket-1", body["authenticationTicket"])

		w.Header().Set("x-echo", "ok")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	adapter := newTestAdapter(t)
	resp, err := adapter.Do(context.Background(), domain.HTTPRequest{
		Method: http.MethodPost,
		URL:    server.URL,
		Headers: map[string]string{
			"Referer":      "https://www.roblox.com",
			"Content-Type": "application/json;charset=UTF-8",
		},
		Body: map[string]string{"authenticationTicket": "ticket-1"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ok", resp.Header.Get("x-echo"))
}

func TestAdapter_Do_CredentialModes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		case "/check":
			cookie, err := r.Cookie("session")
			if err != nil {
				w.Header().Set("x-session", "none")
				return
			}
			w.Header().Set("x-session", cookie.Value)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t)
	ctx := context.Background()

	do := func(path string, mode domain.CredentialMode) string {
		resp, err := adapter.Do(ctx, domain.HTTPRequest{
			Method:      http.MethodGet,
			URL:         server.URL + path,
			Credentials: mode,
		})
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header.Get("x-session")
	}

	// A cookie set on an omitted request is never stored.
	do("/set", domain.CredentialsOmit)
	assert.Equal(t, "none", do("/check", domain.CredentialsInclude))

	do("/set", domain.CredentialsInclude)
	assert.Equal(t, "abc", do("/check", domain.CredentialsInclude))
	assert.Equal(t, "none", do("/check", domain.CredentialsOmit))
}

func TestAdapter_SeedCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(domain.SessionCookieName)
		if err == nil {
			w.Header().Set("x-session", cookie.Value)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t)
	require.NoError(t, adapter.SeedCookie(server.URL, &http.Cookie{
		Name:  domain.SessionCookieName,
		Value: "seeded",
		Path:  "/",
	}))

	cookies := adapter.Cookies(server.URL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "seeded", cookies[0].Value)

	resp, err := adapter.Do(context.Background(), domain.HTTPRequest{
		Method:      http.MethodPost,
		URL:         server.URL,
		Credentials: domain.CredentialsInclude,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "seeded", resp.Header.Get("x-session"))
}

func TestAdapter_Do_Errors(t *testing.T) {
	adapter := newTestAdapter(t)

	_, err := adapter.Do(context.Background(), domain.HTTPRequest{URL: "http://127.0.0.1:1"})
	assert.Error(t, err)

	_, err = adapter.Do(context.Background(), domain.HTTPRequest{
		Method: http.MethodGet,
		URL:    "http://127.0.0.1:1/unreachable",
	})
	assert.Error(t, err)

	assert.Error(t, adapter.SeedCookie("://bad", &http.Cookie{Name: "a", Value: "b"}))
	assert.Nil(t, adapter.Cookies("://bad"))
}

func TestAdapter_Do_HonoursCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := newTestAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Do(ctx, domain.HTTPRequest{Method: http.MethodGet, URL: server.URL})
	assert.Error(t, err)
}

func TestAdapter_SeedCookie_DomainCookieReachesSiblingHosts(t *testing.T) {
	adapter := newTestAdapter(t)
	require.NoError(t, adapter.SeedCookie("https://auth.roblox.com/v2/login", &http.Cookie{
		Name:   domain.SessionCookieName,
		Value:  "seeded",
		Path:   "/",
		Domain: ".roblox.com",
	}))

	for _, sibling := range []string{"https://auth.roblox.com", "https://www.roblox.com/home"} {
		cookies := adapter.Cookies(sibling)
		require.Len(t, cookies, 1, sibling)
		assert.Equal(t, "seeded", cookies[0].Value)
	}
	assert.Empty(t, adapter.Cookies("https://example.com"))
}
