// Package hostendpoint serves the host side of the task bridge: the endpoint
// that reports the host's current task in a response header.
package hostendpoint

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bootbridge/internal/domain"
	"bootbridge/internal/metrics"
)

// Recorder receives host endpoint counters.
type Recorder interface {
	ObserveHostRequest()
	ObserveHostTask(previous, task string)
}

// TaskBoard holds the host's current task.
type TaskBoard struct {
	mu       sync.RWMutex
	current  domain.TaskToken
	logger   *slog.Logger
	recorder Recorder
}

// NewTaskBoard creates a board holding initial. A nil recorder discards
// task updates.
func NewTaskBoard(initial domain.TaskToken, logger *slog.Logger, recorder Recorder) *TaskBoard {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if initial != "" {
		recorder.ObserveHostTask("", string(initial))
	}
	return &TaskBoard{
		current:  initial,
		logger:   logger,
		recorder: recorder,
	}
}

// Set replaces the current task.
func (b *TaskBoard) Set(task domain.TaskToken) {
	b.mu.Lock()
	previous := b.current
	b.current = task
	if previous != task {
		b.recorder.ObserveHostTask(string(previous), string(task))
	}
	b.mu.Unlock()

	if previous != task {
		b.logger.Info("Host task updated", "from", string(previous), "to", string(task))
	}
}

// Current returns the current task.
func (b *TaskBoard) Current() domain.TaskToken {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// PlayTasks walks the board through tasks, holding each for every. It returns
// when the last task is set or ctx is cancelled.
func PlayTasks(ctx context.Context, board *TaskBoard, tasks []domain.TaskToken, every time.Duration) error {
	for i, task := range tasks {
		board.Set(task)
		if i == len(tasks)-1 {
			return nil
		}

		timer := time.NewTimer(every)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
