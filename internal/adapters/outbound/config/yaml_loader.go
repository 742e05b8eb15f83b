// Package config loads runtime configuration from the XDG config directory
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/liftlens/liftlens/internal/domain"
)

const fileName = "config.yaml"

// Loader reads YAML configuration and applies env overrides on top.
type Loader struct {
	dir string
}

// New creates a Loader reading from the default XDG config directory.
func New() *Loader {
	return &Loader{dir: filepath.Join(xdg.ConfigHome, "liftlens")}
}

// NewFromDir creates a Loader reading from dir, for tests.
func NewFromDir(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads config.yaml, falling back to defaults when the file does not
// exist, then overlays environment variables. Env always wins.
func (l *Loader) Load() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(l.dir, fileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file is fine; env and defaults carry the config.
	case err != nil:
		return domain.Config{}, fmt.Errorf("reading %s: %w", fileName, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parsing %s: %w", fileName, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
