// Package credential runs the three-step ticket exchange that turns a logged-in
// web session into a redeemed authentication ticket.
package credential

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bootbridge/internal/domain"
	"bootbridge/internal/errors"
)

// Step names, used in logs, metrics and errors.
const (
	StepCSRF   = "csrf"
	StepTicket = "ticket"
	StepRedeem = "redeem"
)

// Headers exchanged with the identity provider.
const (
	HeaderCSRFToken         = "x-csrf-token"
	HeaderAuthTicket        = "rbx-authentication-ticket"
	HeaderTicketNegotiation = "rbxauthenticationnegotiation"
	headerReferer           = "Referer"
	headerContentType       = "Content-Type"
	redeemContentType       = "application/json;charset=UTF-8"
)

// Endpoints are the identity provider URLs the pipeline talks to.
type Endpoints struct {
	LoginURL  string
	TicketURL string
	RedeemURL string
	Referer   string
}

// DefaultEndpoints returns the identity provider's production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		LoginURL:  "https://auth.roblox.com/v2/login",
		TicketURL: "https://auth.roblox.com/v1/authentication-ticket",
		RedeemURL: "https://auth.roblox.com/v1/authentication-ticket/redeem",
		Referer:   "https://www.roblox.com",
	}
}

type redeemRequest struct {
	AuthenticationTicket string `json:"authenticationTicket"`
}

// Pipeline sequences the anti-forgery, ticket issuance and redemption steps.
type Pipeline struct {
	executor  domain.StepExecutor
	deliverer domain.CredentialDeliverer
	endpoints Endpoints
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline creates a new credential extraction pipeline. A nil deliverer
// leaves the outcome with the caller only.
func NewPipeline(
	executor domain.StepExecutor,
	deliverer domain.CredentialDeliverer,
	endpoints Endpoints,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		executor:  executor,
		deliverer: deliverer,
		endpoints: endpoints,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one extraction attempt. Each step starts only after the
// previous one produced its header; a missing anti-forgery token or ticket
// stops the run with MissingToken or MissingTicket. The redemption response is
// captured as-is and handed to the deliverer whatever its status.
func (p *Pipeline) Run(ctx context.Context) (*domain.RedemptionOutcome, error) {
	runID := uuid.NewString()
	logger := p.logger.With("runID", runID)

	logger.InfoContext(ctx, "Starting credential extraction")

	token, err := p.acquireToken(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Credential extraction failed", "step", StepCSRF, "error", err)
		return nil, err
	}

	ticket, err := p.issueTicket(ctx, token)
	if err != nil {
		logger.ErrorContext(ctx, "Credential extraction failed", "step", StepTicket, "error", err)
		return nil, err
	}

	outcome, err := p.redeemTicket(ctx, ticket)
	if err != nil {
		logger.ErrorContext(ctx, "Credential extraction failed", "step", StepRedeem, "error", err)
		return nil, err
	}
	outcome.RunID = runID

	if outcome.Redeemed() {
		logger.InfoContext(ctx, "Authentication ticket redeemed",
			"status", outcome.Status,
			"sessionCookie", outcome.SessionCookie != "")
	} else {
		logger.WarnContext(ctx, "Authentication ticket redemption was not accepted",
			"status", outcome.Status,
			"body", string(outcome.Body))
	}

	if p.deliverer != nil {
		if err := p.deliverer.Deliver(ctx, outcome); err != nil {
			return outcome, fmt.Errorf("failed to deliver redemption outcome: %w", err)
		}
	}

	return outcome, nil
}

func (p *Pipeline) acquireToken(ctx context.Context) (string, error) {
	// Any state-changing endpoint answers with a fresh token; the login
	// endpoint is just a convenient one.
	result, err := p.executor.Execute(ctx, domain.HandshakeStep{
		Name:           StepCSRF,
		Method:         http.MethodPost,
		URL:            p.endpoints.LoginURL,
		Credentials:    domain.CredentialsInclude,
		ExpectedHeader: HeaderCSRFToken,
	})
	if err != nil {
		return "", err
	}
	if result.Value == "" {
		return "", errors.NewHandshakeError(errors.KindMissingToken, StepCSRF, p.endpoints.LoginURL, nil)
	}
	return result.Value, nil
}

func (p *Pipeline) issueTicket(ctx context.Context, token string) (string, error) {
	result, err := p.executor.Execute(ctx, domain.HandshakeStep{
		Name:        StepTicket,
		Method:      http.MethodPost,
		URL:         p.endpoints.TicketURL,
		Credentials: domain.CredentialsInclude,
		Headers: map[string]string{
			headerReferer:   p.endpoints.Referer,
			HeaderCSRFToken: token,
		},
		ExpectedHeader: HeaderAuthTicket,
	})
	if err != nil {
		return "", err
	}
	if result.Value == "" {
		return "", errors.NewHandshakeError(errors.KindMissingTicket, StepTicket, p.endpoints.TicketURL, nil)
	}
	return result.Value, nil
}

func (p *Pipeline) redeemTicket(ctx context.Context, ticket string) (*domain.RedemptionOutcome, error) {
	result, err := p.executor.Execute(ctx, domain.HandshakeStep{
		Name:        StepRedeem,
		Method:      http.MethodPost,
		URL:         p.endpoints.RedeemURL,
		Credentials: domain.CredentialsInclude,
		Headers: map[string]string{
			headerReferer:           p.endpoints.Referer,
			headerContentType:       redeemContentType,
			HeaderTicketNegotiation: ticket,
		},
		Body: redeemRequest{AuthenticationTicket: ticket},
	})
	if err != nil {
		return nil, err
	}

	return &domain.RedemptionOutcome{
		Status:        result.Status,
		Header:        result.Header,
		Body:          result.Body,
		SessionCookie: sessionCookie(result.Header),
		CompletedAt:   p.now(),
	}, nil
}

// sessionCookie returns the session cookie value from Set-Cookie headers, if any.
func sessionCookie(header http.Header) string {
	resp := http.Response{Header: header}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == domain.SessionCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}
