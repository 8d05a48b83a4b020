// Package config loads yatta's YAML startup file: default layout kind,
// resize step, workspace count, an IPC socket path, logging settings,
// and a list of float-rules to seed the world with on launch. The socket
// path is loaded but not applied: the daemon and its clients always use
// runtimepath.SocketPath
// (spec §6 "Persisted state" — this file is a convenience for re-sending
// the same rules every start, not daemon-written persistence).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/LGUG2Z/yatta/internal/model"
)

// FloatRule is one startup float-rule entry (spec §4.4 float-class/title/exe).
type FloatRule struct {
	Kind    string `yaml:"kind"` // "class" | "title" | "exe"
	Pattern string `yaml:"pattern"`
}

// Logging configures internal/eventlog.
type Logging struct {
	Level    string `yaml:"level,omitempty"`     // debug, info, warn, error
	File     string `yaml:"file,omitempty"`      // empty (the default) disables the action log
	MaxBytes int64  `yaml:"max_bytes,omitempty"` // rotation threshold
	MaxFiles int    `yaml:"max_files,omitempty"` // retained backups
}

// Config is yatta's startup configuration (spec SPEC_FULL.md AMBIENT STACK).
type Config struct {
	DefaultLayout  string      `yaml:"default_layout,omitempty"`
	ResizeStepPx   int         `yaml:"resize_step_px,omitempty"`
	WorkspaceCount int         `yaml:"workspace_count,omitempty"`
	SocketPath     string      `yaml:"socket_path,omitempty"`
	Logging        Logging     `yaml:"logging,omitempty"`
	FloatRules     []FloatRule `yaml:"float_rules,omitempty"`
}

// Defaults returns the built-in configuration used when no file is
// present, or to fill in fields a partial file omits.
func Defaults() *Config {
	return &Config{
		DefaultLayout:  "bspv",
		ResizeStepPx:   model.DefaultResizeStepPx,
		WorkspaceCount: model.WorkspacesPerMonitor,
		Logging: Logging{
			Level:    "info",
			MaxBytes: 10 * 1024 * 1024,
			MaxFiles: 5,
		},
	}
}

// DefaultConfigPath returns ~/.config/yatta/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "yatta", "config.yaml"), nil
}

// Load reads the config file at the standard path, merging it over
// Defaults(). A missing file is not an error.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the config file at path, merging it
// over Defaults(). A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	mergeOverrides(cfg, &raw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeOverrides(cfg, raw *Config) {
	if raw.DefaultLayout != "" {
		cfg.DefaultLayout = raw.DefaultLayout
	}
	if raw.ResizeStepPx != 0 {
		cfg.ResizeStepPx = raw.ResizeStepPx
	}
	if raw.WorkspaceCount != 0 {
		cfg.WorkspaceCount = raw.WorkspaceCount
	}
	if raw.SocketPath != "" {
		cfg.SocketPath = raw.SocketPath
	}
	if raw.Logging.Level != "" {
		cfg.Logging.Level = raw.Logging.Level
	}
	if raw.Logging.File != "" {
		cfg.Logging.File = raw.Logging.File
	}
	if raw.Logging.MaxBytes != 0 {
		cfg.Logging.MaxBytes = raw.Logging.MaxBytes
	}
	if raw.Logging.MaxFiles != 0 {
		cfg.Logging.MaxFiles = raw.Logging.MaxFiles
	}
	if len(raw.FloatRules) > 0 {
		cfg.FloatRules = raw.FloatRules
	}
}

// Validate checks the config against invariants the rest of the daemon
// relies on: the world's workspace array is a fixed compile-time size
// (spec §3), so a config that asks for a different count cannot be
// honoured.
func (c *Config) Validate() error {
	if c.WorkspaceCount != model.WorkspacesPerMonitor {
		return fmt.Errorf("workspace_count must be %d (the world's fixed workspace array size), got %d",
			model.WorkspacesPerMonitor, c.WorkspaceCount)
	}
	for _, r := range c.FloatRules {
		switch r.Kind {
		case "class", "title", "exe":
		default:
			return fmt.Errorf("float rule has unknown kind %q", r.Kind)
		}
		if r.Pattern == "" {
			return fmt.Errorf("float rule of kind %q has an empty pattern", r.Kind)
		}
	}
	return nil
}
