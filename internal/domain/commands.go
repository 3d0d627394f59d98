package domain

import (
	"context"

	"bootbridge/internal/config"
)

// LifecycleGate decides, per page load, whether credential extraction starts.
type LifecycleGate interface {
	Evaluate(ctx context.Context, location string) (bool, error)
}

// ConfigRepository persists the configuration file.
type ConfigRepository interface {
	Save(ctx context.Context, cfg config.Config, force bool) error
	Path() string
}
