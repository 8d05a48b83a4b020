// Package eventlog is a small rotating action log that observes
// model-level actions (window added/removed, commands applied) without
// being part of the core engine. Adapted from the teacher's
// internal/agent action logger: size-based rotation, numbered backup
// files, level filtering.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a string to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Action identifies what kind of model action is being logged.
type Action string

const (
	ActionWindowAdded   Action = "WINDOW-ADDED"
	ActionWindowRemoved Action = "WINDOW-REMOVED"
	ActionCommand       Action = "COMMAND"
	ActionTopology      Action = "TOPOLOGY"
)

func actionLevel(a Action) Level {
	switch a {
	case ActionCommand:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Config holds the logger's settings (spec SPEC_FULL.md AMBIENT STACK).
type Config struct {
	Enabled  bool
	Level    Level
	FilePath string
	MaxBytes int64
	MaxFiles int
}

// Logger appends one line per recorded action to a rotating file.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
}

// New creates a Logger. A disabled config returns a no-op Logger rather
// than an error, so callers can unconditionally call Log/Close.
func New(cfg Config) (*Logger, error) {
	if !cfg.Enabled {
		return &Logger{config: cfg}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &Logger{file: f, config: cfg, currentSize: stat.Size()}, nil
}

// Log records one action, with arbitrary key/value detail fields printed
// in sorted-key order for deterministic output.
func (l *Logger) Log(action Action, hwnd uint32, details map[string]any) {
	if l == nil || !l.config.Enabled {
		return
	}
	if actionLevel(action) < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	if l.config.MaxBytes > 0 && l.currentSize >= l.config.MaxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "eventlog: rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")
	if hwnd != 0 {
		fmt.Fprintf(&sb, " hwnd=%d", hwnd)
	}

	if len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := details[k].(type) {
			case string:
				fmt.Fprintf(&sb, " %s=%q", k, v)
			default:
				fmt.Fprintf(&sb, " %s=%v", k, v)
			}
		}
	}
	sb.WriteString("\n")

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "eventlog: write failed: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate renames the current file through .1..MaxFiles and opens a fresh
// one, dropping the oldest backup.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.config.FilePath
	for i := l.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", base, i)
		newPath := fmt.Sprintf("%s.%d", base, i+1)
		if i == l.config.MaxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, newPath)
		}
	}

	if err := os.Rename(base, base+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	f, err := os.OpenFile(base, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}
