package commands

import (
	"context"
	"fmt"
	"log/slog"

	"bootbridge/internal/config"
	"bootbridge/internal/domain"
)

// ConfigInitCommand writes a configuration file holding the defaults.
type ConfigInitCommand struct {
	configRepo domain.ConfigRepository
	logger     *slog.Logger
}

// NewConfigInitCommand creates a new config init command.
func NewConfigInitCommand(configRepo domain.ConfigRepository, logger *slog.Logger) *ConfigInitCommand {
	return &ConfigInitCommand{
		configRepo: configRepo,
		logger:     logger,
	}
}

// ConfigInitRequest contains the parameters for the config init command.
type ConfigInitRequest struct {
	Force bool
}

// Execute writes the defaults and returns the file path.
func (c *ConfigInitCommand) Execute(ctx context.Context, req ConfigInitRequest) (string, error) {
	if err := c.configRepo.Save(ctx, config.Default(), req.Force); err != nil {
		return "", fmt.Errorf("failed to initialise configuration: %w", err)
	}
	return c.configRepo.Path(), nil
}
