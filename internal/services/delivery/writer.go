// Package delivery hands redemption outcomes to whoever started the extraction.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"bootbridge/internal/domain"
)

// Output formats supported by WriterDeliverer.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const maskedVisible = 4

// WriterDeliverer writes an outcome summary to an io.Writer.
type WriterDeliverer struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	reveal bool
}

// NewWriterDeliverer creates a deliverer. Unless reveal is set the session
// cookie is masked.
func NewWriterDeliverer(out io.Writer, format string, reveal bool) *WriterDeliverer {
	if format == "" {
		format = FormatText
	}
	return &WriterDeliverer{
		out:    out,
		format: format,
		reveal: reveal,
	}
}

type outcomeSummary struct {
	RunID         string    `json:"runId"`
	Redeemed      bool      `json:"redeemed"`
	Status        int       `json:"status"`
	SessionCookie string    `json:"sessionCookie,omitempty"`
	CompletedAt   time.Time `json:"completedAt"`
}

// Deliver writes the outcome.
func (d *WriterDeliverer) Deliver(_ context.Context, outcome *domain.RedemptionOutcome) error {
	if outcome == nil {
		return fmt.Errorf("no redemption outcome to deliver")
	}

	summary := outcomeSummary{
		RunID:         outcome.RunID,
		Redeemed:      outcome.Redeemed(),
		Status:        outcome.Status,
		SessionCookie: d.cookie(outcome.SessionCookie),
		CompletedAt:   outcome.CompletedAt,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.format {
	case FormatJSON:
		encoder := json.NewEncoder(d.out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			return fmt.Errorf("failed to write outcome: %w", err)
		}
	case FormatText:
		if err := d.writeText(summary); err != nil {
			return fmt.Errorf("failed to write outcome: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q", d.format)
	}
	return nil
}

func (d *WriterDeliverer) writeText(summary outcomeSummary) error {
	state := "rejected"
	if summary.Redeemed {
		state = "redeemed"
	}

	if _, err := fmt.Fprintf(d.out, "Run %s: ticket %s (HTTP %d)\n", summary.RunID, state, summary.Status); err != nil {
		return err
	}
	if summary.SessionCookie != "" {
		if _, err := fmt.Fprintf(d.out, "Session cookie: %s\n", summary.SessionCookie); err != nil {
			return err
		}
	}
	return nil
}

func (d *WriterDeliverer) cookie(value string) string {
	if d.reveal || value == "" {
		return value
	}
	return Mask(value)
}

// Mask hides all but the last few characters of a secret.
func Mask(secret string) string {
	if len(secret) <= maskedVisible {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-maskedVisible:]
}
