package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"bootbridge/internal/domain"
	"bootbridge/internal/logging"
	"bootbridge/internal/services/taskbridge"
)

// WatchCommand prints every task change reported by the task bridge.
type WatchCommand struct {
	out    io.Writer
	logger *slog.Logger
}

// NewWatchCommand creates a new watch command.
func NewWatchCommand(out io.Writer, logger *slog.Logger) *WatchCommand {
	return &WatchCommand{
		out:    out,
		logger: logging.WithOperation(logger, "watch"),
	}
}

// WatchRequest contains the parameters for the watch command.
type WatchRequest struct {
	// StopAt ends the watch once this task is held. Empty watches until cancelled.
	StopAt domain.TaskToken
}

// WatchResult summarises a finished watch.
type WatchResult struct {
	Changes   int
	FinalTask domain.TaskToken
}

// Execute polls until ctx is done or StopAt is reached.
func (c *WatchCommand) Execute(ctx context.Context, req WatchRequest, bridge *taskbridge.Bridge) (*WatchResult, error) {
	if req.StopAt != "" && bridge.CurrentTask() == req.StopAt {
		c.logger.InfoContext(ctx, "Host already at stop task", "task", string(req.StopAt))
		return &WatchResult{FinalTask: req.StopAt}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		changes int
	)

	id := bridge.AddListener(func(event domain.ChangeEvent) {
		task := bridge.CurrentTask()

		mu.Lock()
		changes++
		mu.Unlock()

		fmt.Fprintf(c.out, "%s %s\n", event.Type, task)
		if req.StopAt != "" && task == req.StopAt {
			cancel()
		}
	})
	defer bridge.RemoveListener(id)

	c.logger.InfoContext(ctx, "Watching host task", "initial", string(bridge.CurrentTask()))

	err := bridge.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("task bridge stopped: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return &WatchResult{Changes: changes, FinalTask: bridge.CurrentTask()}, nil
}
