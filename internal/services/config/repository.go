// Package config locates and persists bootbridge's configuration file.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bootbridge/internal/config"
	"bootbridge/internal/domain"
)

const (
	dirPermissions  = 0o700 // Owner-only access for security
	filePermissions = 0o600 // Read/write owner only
)

// ErrConfigExists is returned when a write would overwrite an existing file.
var ErrConfigExists = errors.New("configuration file already exists")

// Repository handles configuration persistence.
type Repository struct {
	fs         domain.FileSystemAdapter
	configPath string
	logger     *slog.Logger
}

// NewRepository creates a new configuration repository.
func NewRepository(fs domain.FileSystemAdapter, configPath string, logger *slog.Logger) *Repository {
	return &Repository{
		fs:         fs,
		configPath: configPath,
		logger:     logger,
	}
}

// Path returns the configuration file path.
func (r *Repository) Path() string {
	return r.configPath
}

// Exists reports whether the configuration file is present.
func (r *Repository) Exists() bool {
	_, err := r.fs.Stat(r.configPath)
	return err == nil
}

// Save writes cfg as YAML. Without force an existing file is left untouched
// and ErrConfigExists is returned.
func (r *Repository) Save(ctx context.Context, cfg config.Config, force bool) error {
	if !force && r.Exists() {
		return fmt.Errorf("%w: %s", ErrConfigExists, r.configPath)
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.configPath), dirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if writeErr := r.fs.WriteFile(r.configPath, data, filePermissions); writeErr != nil {
		return fmt.Errorf("failed to write configuration file: %w", writeErr)
	}

	r.logger.InfoContext(ctx, "Configuration saved", "path", r.configPath)
	return nil
}

// Marshal renders cfg as the YAML document viper reads back.
func Marshal(cfg config.Config) ([]byte, error) {
	data, err := yaml.Marshal(nest(cfg.Settings()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}

// nest turns dotted keys into nested maps so the file mirrors viper's layout.
func nest(flat map[string]any) map[string]any {
	root := map[string]any{}
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}
