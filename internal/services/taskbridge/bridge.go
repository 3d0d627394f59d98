// Package taskbridge turns a polled host endpoint into an observable current-task value.
package taskbridge

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bootbridge/internal/domain"
	"bootbridge/internal/errors"
	"bootbridge/internal/logging"
	"bootbridge/internal/metrics"
)

// DefaultPollInterval is how often the host endpoint is polled.
const DefaultPollInterval = 100 * time.Millisecond

// Listener receives change events. Listeners run on the polling goroutine and
// must not block.
type Listener func(event domain.ChangeEvent)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithInterval sets the poll interval.
func WithInterval(interval time.Duration) Option {
	return func(b *Bridge) {
		if interval > 0 {
			b.interval = interval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder domain.Recorder) Option {
	return func(b *Bridge) {
		if recorder != nil {
			b.recorder = recorder
		}
	}
}

// Bridge holds exactly one current task and publishes a NewTask event each
// time a poll yields a different, non-empty task.
type Bridge struct {
	source   domain.TaskSource
	interval time.Duration
	logger   *slog.Logger
	recorder domain.Recorder

	mu         sync.RWMutex
	current    domain.TaskToken
	appliedSeq uint64

	seq      atomic.Uint64
	inFlight atomic.Bool

	listenersMu    sync.Mutex
	listeners      []listenerEntry
	nextListenerID ListenerID
}

// New creates a bridge holding startingTask. Polling begins with Start.
func New(source domain.TaskSource, startingTask domain.TaskToken, opts ...Option) *Bridge {
	b := &Bridge{
		source:   source,
		interval: DefaultPollInterval,
		logger:   logging.NewTestLogger(),
		recorder: metrics.NewNoop(),
		current:  startingTask,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CurrentTask returns the held task without waiting on any poll.
func (b *Bridge) CurrentTask() domain.TaskToken {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// AddListener registers fn for NewTask events.
func (b *Bridge) AddListener(fn Listener) ListenerID {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()

	b.nextListenerID++
	b.listeners = append(b.listeners, listenerEntry{id: b.nextListenerID, fn: fn})
	return b.nextListenerID
}

// RemoveListener unregisters a listener. It reports whether id was registered.
func (b *Bridge) RemoveListener(id ListenerID) bool {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()

	for i, entry := range b.listeners {
		if entry.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Start polls on every tick until ctx is cancelled. A tick that fires while
// the previous poll is still outstanding is skipped. Start waits for the
// outstanding poll before returning ctx's error.
func (b *Bridge) Start(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	b.logger.InfoContext(ctx, "Task bridge started",
		"interval", b.interval,
		"task", string(b.CurrentTask()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !b.inFlight.CompareAndSwap(false, true) {
				b.recorder.ObservePoll(metrics.ResultSkipped)
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer b.inFlight.Store(false)
				b.PollOnce(ctx)
			}()
		}
	}
}

// PollOnce asks the source for the current task and applies it. It reports
// whether the held task changed. Failed polls are dropped silently.
func (b *Bridge) PollOnce(ctx context.Context) bool {
	seq := b.seq.Add(1)

	candidate, err := b.source.CurrentTask(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			// Something answers on the port, but it is not a host endpoint.
			b.recorder.ObservePoll(metrics.ResultMissing)
			b.logger.DebugContext(ctx, "Host endpoint has no current task route", "seq", seq, "error", err)
			return false
		}
		b.recorder.ObservePoll(metrics.ResultError)
		b.logger.DebugContext(ctx, "Task poll failed", "seq", seq, "error", err)
		return false
	}
	b.recorder.ObservePoll(metrics.ResultOK)

	return b.apply(seq, candidate)
}

// apply replaces the held task with candidate when candidate is non-empty,
// differs from the held task and is newer than the last applied poll.
func (b *Bridge) apply(seq uint64, candidate domain.TaskToken) bool {
	b.mu.Lock()
	if seq <= b.appliedSeq || candidate == "" || candidate == b.current {
		b.mu.Unlock()
		return false
	}
	previous := b.current
	b.current = candidate
	b.appliedSeq = seq
	b.mu.Unlock()

	b.logger.Debug("Task changed", "from", string(previous), "to", string(candidate), "seq", seq)
	b.recorder.ObserveTaskChange()
	b.publish(domain.ChangeEvent{Type: domain.EventNewTask})
	return true
}

func (b *Bridge) publish(event domain.ChangeEvent) {
	b.listenersMu.Lock()
	listeners := make([]listenerEntry, len(b.listeners))
	copy(listeners, b.listeners)
	b.listenersMu.Unlock()

	for _, entry := range listeners {
		entry.fn(event)
	}
}
