package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog_WritesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{Enabled: true, Level: LevelInfo, FilePath: path, MaxBytes: 1 << 20, MaxFiles: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Log(ActionWindowAdded, 7, map[string]any{"class": "Alacritty"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "WINDOW-ADDED") || !strings.Contains(string(data), "hwnd=7") {
		t.Fatalf("unexpected log content: %s", data)
	}
}

func TestLog_LevelFiltersDebugActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{Enabled: true, Level: LevelInfo, FilePath: path, MaxBytes: 1 << 20, MaxFiles: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Log(ActionCommand, 1, nil) // debug-level, should be filtered at Info

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Fatalf("expected debug-level action to be filtered, got: %s", data)
	}
}

func TestLog_DisabledIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{Enabled: false, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Log(ActionWindowAdded, 1, nil)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no log file to be created when disabled")
	}
}

func TestRotate_KeepsMaxFilesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{Enabled: true, Level: LevelDebug, FilePath: path, MaxBytes: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	for i := 0; i < 5; i++ {
		l.Log(ActionWindowAdded, uint32(i), nil)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected .1 backup to exist: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected only MaxFiles backups to be retained")
	}
}
