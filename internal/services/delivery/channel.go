package delivery

import (
	"context"

	"bootbridge/internal/domain"
)

// ChannelDeliverer hands outcomes to an in-process consumer.
type ChannelDeliverer struct {
	ch chan *domain.RedemptionOutcome
}

// NewChannelDeliverer creates a deliverer whose channel buffers up to size outcomes.
func NewChannelDeliverer(size int) *ChannelDeliverer {
	return &ChannelDeliverer{ch: make(chan *domain.RedemptionOutcome, size)}
}

// Outcomes returns the channel outcomes are delivered on.
func (d *ChannelDeliverer) Outcomes() <-chan *domain.RedemptionOutcome {
	return d.ch
}

// Deliver blocks until the outcome is accepted or ctx is done.
func (d *ChannelDeliverer) Deliver(ctx context.Context, outcome *domain.RedemptionOutcome) error {
	select {
	case d.ch <- outcome:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
