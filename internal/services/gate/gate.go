// Package gate triggers credential extraction once the login flow reaches its landing page.
package gate

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"bootbridge/internal/domain"
)

// DefaultTerminalMarker is the path suffix of the post-login landing page.
const DefaultTerminalMarker = "home"

// State is the gate's lifecycle state.
type State int32

const (
	// Waiting means the landing page has not been observed yet.
	Waiting State = iota
	// Triggered is terminal: the pipeline has been started once.
	Triggered
)

func (s State) String() string {
	if s == Triggered {
		return "Triggered"
	}
	return "Waiting"
}

// Gate is a one-shot latch in front of a credential pipeline.
type Gate struct {
	runner    domain.PipelineRunner
	marker    string
	triggered atomic.Bool
	logger    *slog.Logger
}

// New creates a gate that runs runner the first time a location ending in
// marker is evaluated. An empty marker falls back to DefaultTerminalMarker.
func New(runner domain.PipelineRunner, marker string, logger *slog.Logger) *Gate {
	if marker == "" {
		marker = DefaultTerminalMarker
	}
	return &Gate{
		runner: runner,
		marker: marker,
		logger: logger,
	}
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	if g.triggered.Load() {
		return Triggered
	}
	return Waiting
}

// Evaluate inspects location and, if it is the landing page and the gate is
// still waiting, runs the pipeline on the calling goroutine. It reports
// whether this call triggered the pipeline. Every other observation is a no-op.
func (g *Gate) Evaluate(ctx context.Context, location string) (bool, error) {
	g.logger.DebugContext(ctx, "Evaluating page location", "location", location)

	if !g.Matches(location) {
		return false, nil
	}

	if !g.triggered.CompareAndSwap(false, true) {
		g.logger.DebugContext(ctx, "Landing page seen again, extraction already triggered",
			"location", location)
		return false, nil
	}

	g.logger.InfoContext(ctx, "Page reached landing page, extracting credentials",
		"location", location)

	if _, err := g.runner.Run(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Matches reports whether location's path ends with the terminal marker.
func (g *Gate) Matches(location string) bool {
	return strings.HasSuffix(locationPath(location), g.marker)
}

// locationPath returns the path of location, ignoring query and fragment.
// Locations that do not parse are compared verbatim.
func locationPath(location string) string {
	path := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		path = u.Path
	}
	return strings.TrimSuffix(path, "/")
}
