package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"bootbridge/internal/domain"
	"bootbridge/internal/logging"
)

const sessionCookiePrompt = "Session cookie (" + domain.SessionCookieName + "): "

// ExtractCommand replays page loads through the lifecycle gate with a seeded
// browser session.
type ExtractCommand struct {
	sessionStore domain.SessionStore
	secretReader domain.SecretReader
	logger       *slog.Logger
}

// NewExtractCommand creates a new extract command.
func NewExtractCommand(
	sessionStore domain.SessionStore,
	secretReader domain.SecretReader,
	logger *slog.Logger,
) *ExtractCommand {
	return &ExtractCommand{
		sessionStore: sessionStore,
		secretReader: secretReader,
		logger:       logging.WithOperation(logger, "extract"),
	}
}

// ExtractRequest contains the parameters for the extract command.
type ExtractRequest struct {
	// Locations are the page URLs loaded, in order.
	Locations []string
	// CookieURL is the identity provider origin the session cookie belongs to.
	CookieURL string
	// CookieDomain, when set, widens the cookie to every host under it.
	CookieDomain string
	// SkipSession leaves the cookie jar empty.
	SkipSession bool
}

// ExtractResult reports which location, if any, triggered extraction.
type ExtractResult struct {
	Triggered bool
	Location  string
}

// Execute seeds the session and evaluates each location. Evaluation stops at
// the first location that fires the gate.
func (c *ExtractCommand) Execute(
	ctx context.Context,
	req ExtractRequest,
	gate domain.LifecycleGate,
) (*ExtractResult, error) {
	if len(req.Locations) == 0 {
		return nil, errors.New("at least one location is required")
	}

	if !req.SkipSession {
		if err := c.seedSession(ctx, req.CookieURL, req.CookieDomain); err != nil {
			return nil, err
		}
	}

	for _, location := range req.Locations {
		c.logger.DebugContext(ctx, "Page loaded", "location", location)

		triggered, err := gate.Evaluate(ctx, location)
		if err != nil {
			return &ExtractResult{Triggered: triggered, Location: location},
				fmt.Errorf("credential extraction failed: %w", err)
		}
		if triggered {
			return &ExtractResult{Triggered: true, Location: location}, nil
		}
	}

	c.logger.InfoContext(ctx, "No location reached the landing page", "locations", len(req.Locations))
	return &ExtractResult{}, nil
}

func (c *ExtractCommand) seedSession(ctx context.Context, cookieURL, cookieDomain string) error {
	secret, err := c.secretReader.ReadSecret(ctx, sessionCookiePrompt)
	if err != nil {
		return fmt.Errorf("failed to read session cookie: %w", err)
	}
	if secret == "" {
		return errors.New("session cookie must not be empty")
	}

	cookie := &http.Cookie{
		Name:   domain.SessionCookieName,
		Value:  secret,
		Path:   "/",
		Domain: cookieDomain,
	}
	if err := c.sessionStore.SeedCookie(cookieURL, cookie); err != nil {
		return fmt.Errorf("failed to seed session cookie: %w", err)
	}

	c.logger.DebugContext(ctx, "Session cookie seeded", "url", cookieURL, "domain", cookieDomain)
	return nil
}
