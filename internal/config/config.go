// Package config loads user settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/names/internal/filter"
	"github.com/idilsaglam/names/internal/ui"
)

// EnvDB overrides the database path from the file.
const EnvDB = "NAMES_DB"

const (
	dirName      = "names"
	fileName     = "config.yaml"
	dataFileName = "names.db"
)

// Config is the on-disk settings file.
type Config struct {
	DB         string `yaml:"db"`
	Theme      string `yaml:"theme"`
	FilterMode string `yaml:"filter_mode"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	Watch      bool   `yaml:"watch"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		DB:         defaultDB(),
		Theme:      "classic",
		FilterMode: filter.ModeLiteral.String(),
		LogLevel:   "info",
		Watch:      true,
	}
}

func defaultDB() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, dirName, dataFileName)
	}
	return dataFileName
}

// DefaultPath returns $XDG_CONFIG_HOME/names/config.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads path over the defaults. A missing file is not an error.
// NAMES_DB, when set, replaces the database path.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.DB = v
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Marshal encodes c as it would be saved.
func (c Config) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return b, nil
}

// Validate rejects values the program cannot use.
func (c Config) Validate() error {
	if c.DB == "" {
		return errors.New("db: empty path")
	}
	if _, err := filter.ParseMode(c.FilterMode); err != nil {
		return fmt.Errorf("filter_mode: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Theme != "" && !slices.Contains(ui.Themes, strings.ToLower(c.Theme)) {
		return fmt.Errorf("theme: unknown %q (want one of %s)", c.Theme, strings.Join(ui.Themes, ", "))
	}
	return nil
}

// Mode returns the parsed filter mode.
func (c Config) Mode() filter.Mode {
	m, _ := filter.ParseMode(c.FilterMode)
	return m
}

// Level returns the parsed log level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
