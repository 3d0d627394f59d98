package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootbridge/internal/domain"
)

func sampleOutcome() *domain.RedemptionOutcome {
	return &domain.RedemptionOutcome{
		RunID:         "run-1",
		Status:        http.StatusOK,
		SessionCookie: "abcdefghijkl",
		CompletedAt:   time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriterDeliverer_Text(t *testing.T) {
	tests := []struct {
		name     string
		reveal   bool
		outcome  *domain.RedemptionOutcome
		contains []string
		excludes []string
	}{
		{
			name:     "masked by default",
			outcome:  sampleOutcome(),
			contains: []string{"Run run-1: ticket redeemed (HTTP 200)", "Session cookie: ********ijkl"},
			excludes: []string{"abcdefghijkl"},
		},
		{
			name:     "revealed",
			reveal:   true,
			outcome:  sampleOutcome(),
			contains: []string{"Session cookie: abcdefghijkl"},
		},
		{
			name:     "rejected without cookie",
			outcome:  &domain.RedemptionOutcome{RunID: "run-2", Status: http.StatusForbidden},
			contains: []string{"ticket rejected (HTTP 403)"},
			excludes: []string{"Session cookie"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			deliverer := NewWriterDeliverer(&buf, "", tt.reveal)

			require.NoError(t, deliverer.Deliver(context.Background(), tt.outcome))

			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriterDeliverer_JSON(t *testing.T) {
	var buf bytes.Buffer
	deliverer := NewWriterDeliverer(&buf, FormatJSON, false)

	require.NoError(t, deliverer.Deliver(context.Background(), sampleOutcome()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["runId"])
	assert.Equal(t, true, got["redeemed"])
	assert.Equal(t, "********ijkl", got["sessionCookie"])
}

func TestWriterDeliverer_Errors(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, NewWriterDeliverer(&buf, FormatText, false).Deliver(context.Background(), nil))
	assert.Error(t, NewWriterDeliverer(&buf, "xml", false).Deliver(context.Background(), sampleOutcome()))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "********6789", Mask("0123456789"))
}

func TestChannelDeliverer(t *testing.T) {
	deliverer := NewChannelDeliverer(1)
	outcome := sampleOutcome()

	require.NoError(t, deliverer.Deliver(context.Background(), outcome))
	assert.Same(t, outcome, <-deliverer.Outcomes())
}

func TestChannelDeliverer_ContextCancelled(t *testing.T) {
	deliverer := NewChannelDeliverer(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := deliverer.Deliver(ctx, sampleOutcome())
	assert.ErrorIs(t, err, context.Canceled)
}
