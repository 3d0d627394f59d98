package app

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"bootbridge/internal/config"
	"bootbridge/internal/domain"
	"bootbridge/internal/metrics"
)

// App contains all application dependencies.
type App struct {
	// Core configuration dependencies (always needed)
	ConfigRepo     domain.ConfigRepository
	ConfigProvider ConfigPathProvider

	// Outbound HTTP with the shared session cookie jar
	HTTP domain.HTTPAdapter
	// SessionStore is the same jar, seeded before extraction
	SessionStore domain.SessionStore

	// Factory for creating services on-demand
	Services *ServiceFactory

	Metrics *metrics.Metrics

	// File operations (needed by multiple commands)
	FileSystem domain.FileSystemAdapter

	// I/O dependencies
	SecretReader domain.SecretReader

	// Logging
	Logger    *slog.Logger
	logCloser io.Closer

	// Settings is the validated runtime configuration
	Settings *config.Config

	// Configuration
	Config *Config
}

// ConfigPathProvider resolves where the configuration file lives.
type ConfigPathProvider interface {
	GetConfigPath() (string, error)
}

// Config holds application configuration.
type Config struct {
	LogLevel    slog.Level
	Verbose     bool
	levelForced bool
	Settings    *config.Config
	LogOutput   io.Writer
}

// Option is a functional option for configuring the App.
type Option func(*Config)

// WithLogLevel sets the logging level.
func WithLogLevel(level slog.Level) Option {
	return func(cfg *Config) {
		cfg.LogLevel = level
		cfg.levelForced = true
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(cfg *Config) {
		cfg.Verbose = verbose
		if verbose {
			cfg.LogLevel = slog.LevelDebug
			cfg.levelForced = true
		}
	}
}

// WithSettings supplies the runtime configuration. Without it the defaults apply.
func WithSettings(settings *config.Config) Option {
	return func(cfg *Config) {
		cfg.Settings = settings
	}
}

// WithLogOutput redirects log output.
func WithLogOutput(w io.Writer) Option {
	return func(cfg *Config) {
		cfg.LogOutput = w
	}
}

// NewApp creates a new App with the given options.
func NewApp(ctx context.Context, opts ...Option) (*App, error) {
	cfg := &Config{
		LogLevel: slog.LevelInfo,
		Verbose:  false,
	}

	// Apply options.
	for _, opt := range opts {
		opt(cfg)
	}

	return NewAppWithConfig(ctx, cfg)
}

// LogMetrics logs every non-zero counter collected during this run. Commands
// that never serve /metrics call it on exit.
func (a *App) LogMetrics(ctx context.Context) {
	snapshot, err := a.Metrics.Snapshot()
	if err != nil {
		a.Logger.WarnContext(ctx, "Failed to collect metrics", "error", err)
		return
	}
	if len(snapshot) == 0 {
		return
	}

	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		args = append(args, key, snapshot[key])
	}
	a.Logger.InfoContext(ctx, "Run metrics", args...)
}

// Close releases the log file, if any.
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
