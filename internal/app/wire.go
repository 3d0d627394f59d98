package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bootbridge/internal/adapters/filesystem"
	httpadapter "bootbridge/internal/adapters/http"
	"bootbridge/internal/adapters/terminal"
	bbconfig "bootbridge/internal/config"
	"bootbridge/internal/logging"
	"bootbridge/internal/metrics"
	"bootbridge/internal/services/config"
)

// NewAppWithConfig creates a new App with the given configuration, wiring all dependencies.
func NewAppWithConfig(ctx context.Context, cfg *Config) (*App, error) {
	settings := cfg.Settings
	if settings == nil {
		defaults := bbconfig.Default()
		settings = &defaults
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	// Create logger. Flags win over the configured level.
	level := logging.LogLevel(settings.Log.Level)
	if cfg.levelForced {
		level = logging.LogLevel(levelName(cfg))
	}
	logger, logCloser := logging.New(logging.Config{
		Level:  level,
		Format: settings.Log.Format,
		Output: cfg.LogOutput,
		File:   settings.Log.File,
	})

	// Create filesystem adapter.
	fs := filesystem.New()

	// Create the HTTP adapter holding the session cookie jar.
	httpAdapter, err := httpadapter.NewAdapter(httpadapter.Options{
		Timeout:            settings.HTTP.Timeout,
		InsecureSkipVerify: settings.HTTP.InsecureSkipVerify,
		RequestsPerSecond:  settings.HTTP.RequestsPerSecond,
		Burst:              settings.HTTP.Burst,
	}, logger)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to create HTTP adapter: %w", err)
	}

	recorder := metrics.New()

	// Create secret reader with environment variable support.
	secretReader := terminal.NewAdapter(os.Stdin, os.Stderr)

	// Create config services.
	configProvider := config.NewProvider(fs)
	configPath, err := configProvider.GetConfigPath()
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	configRepo := config.NewRepository(fs, configPath, logger)

	// Log configuration details.
	logger.DebugContext(ctx, "Initializing bootbridge with configuration",
		"logLevel", string(level),
		"verbose", cfg.Verbose,
		"configPath", configPath)

	return &App{
		ConfigRepo:     configRepo,
		ConfigProvider: configProvider,
		HTTP:           httpAdapter,
		SessionStore:   httpAdapter,
		Services:       NewServiceFactory(settings, httpAdapter, recorder, logger),
		Metrics:        recorder,
		FileSystem:     fs,
		SecretReader:   secretReader,
		Logger:         logger,
		logCloser:      logCloser,
		Settings:       settings,
		Config:         cfg,
	}, nil
}

func levelName(cfg *Config) string {
	switch {
	case cfg.LogLevel <= slog.LevelDebug:
		return string(logging.LevelDebug)
	case cfg.LogLevel >= slog.LevelError:
		return string(logging.LevelError)
	case cfg.LogLevel >= slog.LevelWarn:
		return string(logging.LevelWarn)
	default:
		return string(logging.LevelInfo)
	}
}
