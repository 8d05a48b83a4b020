package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_Validates(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.DefaultLayout != "bspv" {
		t.Fatalf("expected default_layout bspv, got %q", cfg.DefaultLayout)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Defaults()
	if cfg.DefaultLayout != want.DefaultLayout || cfg.ResizeStepPx != want.ResizeStepPx {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_OverridesMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "default_layout: columns\nresize_step_px: 25\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLayout != "columns" {
		t.Fatalf("expected default_layout columns, got %q", cfg.DefaultLayout)
	}
	if cfg.ResizeStepPx != 25 {
		t.Fatalf("expected resize_step_px 25, got %d", cfg.ResizeStepPx)
	}
	// Untouched fields keep their defaults.
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected logging.level to fall back to default, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromPath_WrongWorkspaceCountFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("workspace_count: 5\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected a non-default workspace_count to fail validation")
	}
}

func TestLoadFromPath_UnknownFloatRuleKindFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "float_rules:\n  - kind: nonsense\n    pattern: foo\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected an unknown float rule kind to fail validation")
	}
}
