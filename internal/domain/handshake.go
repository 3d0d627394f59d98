package domain

import (
	"context"
	"net/http"
	"time"
)

// HandshakeStep is one named request/response exchange that yields one header value.
type HandshakeStep struct {
	Name           string
	Method         string
	URL            string
	Credentials    CredentialMode
	Headers        map[string]string
	Body           any
	ExpectedHeader string
}

// StepResult is what a handshake step produced. Value is empty when the
// expected header was absent.
type StepResult struct {
	Value  string
	Status int
	Header http.Header
	Body   []byte
}

// StepExecutor performs exactly one handshake step.
type StepExecutor interface {
	Execute(ctx context.Context, step HandshakeStep) (StepResult, error)
}

// RedemptionOutcome is the raw result of redeeming an authentication ticket.
type RedemptionOutcome struct {
	RunID         string
	Status        int
	Header        http.Header
	Body          []byte
	SessionCookie string
	CompletedAt   time.Time
}

// Redeemed reports whether the identity provider accepted the ticket.
func (o *RedemptionOutcome) Redeemed() bool {
	return o != nil && o.Status >= http.StatusOK && o.Status < http.StatusMultipleChoices
}

// CredentialDeliverer hands a redemption outcome to whoever consumes it.
type CredentialDeliverer interface {
	Deliver(ctx context.Context, outcome *RedemptionOutcome) error
}

// PipelineRunner runs one credential extraction attempt.
type PipelineRunner interface {
	Run(ctx context.Context) (*RedemptionOutcome, error)
}
