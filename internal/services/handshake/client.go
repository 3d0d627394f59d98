// Package handshake executes single named HTTP exchanges and extracts one response header from each.
package handshake

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bootbridge/internal/domain"
	"bootbridge/internal/errors"
	"bootbridge/internal/logging"
	"bootbridge/internal/metrics"
)

// Client executes handshake steps through an HTTP adapter.
type Client struct {
	httpAdapter domain.HTTPAdapter
	recorder    domain.Recorder
	logger      *slog.Logger
}

// NewClient creates a new handshake client. A nil recorder discards metrics.
func NewClient(httpAdapter domain.HTTPAdapter, recorder domain.Recorder, logger *slog.Logger) *Client {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Client{
		httpAdapter: httpAdapter,
		recorder:    recorder,
		logger:      logger,
	}
}

// Execute performs exactly one request for step and returns the value of its
// expected response header. An absent header is not an error here: the result
// carries an empty Value and the caller decides whether that is fatal. A
// request that never produced a response fails with RequestFailed.
func (c *Client) Execute(ctx context.Context, step domain.HandshakeStep) (domain.StepResult, error) {
	logger := logging.WithStep(c.logger, step.Name, step.URL)
	logger.DebugContext(ctx, "Executing handshake step",
		"method", step.Method,
		"credentials", step.Credentials.String(),
		"expectedHeader", step.ExpectedHeader)

	resp, err := c.httpAdapter.Do(ctx, domain.HTTPRequest{
		Method:      step.Method,
		URL:         step.URL,
		Headers:     step.Headers,
		Body:        step.Body,
		Credentials: step.Credentials,
	})
	if err != nil {
		c.recorder.ObserveStep(step.Name, metrics.ResultError)
		return domain.StepResult{}, errors.NewHandshakeError(errors.KindRequestFailed, step.Name, step.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recorder.ObserveStep(step.Name, metrics.ResultError)
		return domain.StepResult{}, errors.NewHandshakeError(
			errors.KindRequestFailed,
			step.Name,
			step.URL,
			fmt.Errorf("failed to read response body: %w", err),
		)
	}

	result := domain.StepResult{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}
	if step.ExpectedHeader != "" {
		result.Value = resp.Header.Get(step.ExpectedHeader)
	}

	outcome := metrics.ResultOK
	if step.ExpectedHeader != "" && result.Value == "" {
		outcome = metrics.ResultMissing
	}
	c.recorder.ObserveStep(step.Name, outcome)

	logger.DebugContext(ctx, "Handshake step completed",
		"status", result.Status,
		"headerPresent", result.Value != "")

	return result, nil
}
