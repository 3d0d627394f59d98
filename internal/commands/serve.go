package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bootbridge/internal/domain"
	"bootbridge/internal/logging"
	"bootbridge/internal/services/hostendpoint"
)

// ServeCommand runs the host task endpoint, optionally walking the board
// through the host's bootstrap tasks.
type ServeCommand struct {
	logger *slog.Logger
}

// NewServeCommand creates a new serve command.
func NewServeCommand(logger *slog.Logger) *ServeCommand {
	return &ServeCommand{logger: logging.WithOperation(logger, "serve")}
}

// ServeRequest contains the parameters for the serve command.
type ServeRequest struct {
	Listen   string
	Demo     bool
	DemoStep time.Duration
}

type hostServer interface {
	ListenAndServe(ctx context.Context, addr string) error
}

// Execute serves until ctx is cancelled or the server fails.
func (c *ServeCommand) Execute(
	ctx context.Context,
	req ServeRequest,
	server hostServer,
	board *hostendpoint.TaskBoard,
) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.ListenAndServe(ctx, req.Listen)
	})

	if req.Demo {
		group.Go(func() error {
			c.logger.InfoContext(ctx, "Playing host tasks", "step", req.DemoStep)
			err := hostendpoint.PlayTasks(ctx, board, domain.HostTasks(), req.DemoStep)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return group.Wait()
}
